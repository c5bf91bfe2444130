// cmd/tools/catalog-seeder/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"loanmatch-workers/internal/common/config"
	"loanmatch-workers/pkg/catalog"
)

func main() {
	seedPath := flag.String("file", "configs/catalog-seed.json", "Path to the catalog seed file")
	validateOnly := flag.Bool("validate", false, "Validate the seed file without touching the database")
	flag.Parse()

	seed, err := catalog.Load(*seedPath)
	if err != nil {
		fmt.Printf("Seed file check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seed file OK: %d lenders, %d products\n", len(seed.Lenders), seed.ProductCount())

	if *validateOnly {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config load failed: %v\n", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.Postgres.GetDSN())
	if err != nil {
		fmt.Printf("Database open failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		fmt.Printf("Database ping failed: %v\n", err)
		os.Exit(1)
	}

	if err := seedCatalog(ctx, db, seed); err != nil {
		fmt.Printf("Seeding failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Catalog seeded successfully.")
}

// seedCatalog upserts the whole file in one transaction so a failed run
// never leaves a half-seeded catalog.
func seedCatalog(ctx context.Context, db *sql.DB, seed *catalog.SeedFile) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, lender := range seed.Lenders {
		referralParams, err := json.Marshal(lender.ReferralParams)
		if err != nil {
			return fmt.Errorf("marshal referral params for %s: %w", lender.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO lenders (id, name, active, brand_color, website, referral_url, referral_params)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				active = EXCLUDED.active,
				brand_color = EXCLUDED.brand_color,
				website = EXCLUDED.website,
				referral_url = EXCLUDED.referral_url,
				referral_params = EXCLUDED.referral_params`,
			lender.ID, lender.Name, lender.Active,
			lender.BrandColor, lender.Website, lender.ReferralURL, referralParams,
		)
		if err != nil {
			return fmt.Errorf("upsert lender %s: %w", lender.ID, err)
		}

		for _, product := range lender.Products {
			requirements, err := json.Marshal(product.Requirements)
			if err != nil {
				return fmt.Errorf("marshal requirements for %s: %w", product.ID, err)
			}
			limits, err := json.Marshal(product.Limits)
			if err != nil {
				return fmt.Errorf("marshal limits for %s: %w", product.ID, err)
			}
			weights, err := json.Marshal(product.Weights)
			if err != nil {
				return fmt.Errorf("marshal weights for %s: %w", product.ID, err)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO products (id, lender_id, name, description, type, active, requirements, limits, weights, external_apply_url)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (id) DO UPDATE SET
					lender_id = EXCLUDED.lender_id,
					name = EXCLUDED.name,
					description = EXCLUDED.description,
					type = EXCLUDED.type,
					active = EXCLUDED.active,
					requirements = EXCLUDED.requirements,
					limits = EXCLUDED.limits,
					weights = EXCLUDED.weights,
					external_apply_url = EXCLUDED.external_apply_url`,
				product.ID, lender.ID, product.Name, product.Description,
				product.Type, product.Active, requirements, limits, weights,
				product.ExternalApplyURL,
			)
			if err != nil {
				return fmt.Errorf("upsert product %s: %w", product.ID, err)
			}
		}
	}

	return tx.Commit()
}
