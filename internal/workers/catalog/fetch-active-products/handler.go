// internal/workers/catalog/fetch-active-products/handler.go
package fetchactiveproducts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	stderrors "loanmatch-workers/internal/common/errors"
	"loanmatch-workers/internal/common/logger"
	"loanmatch-workers/internal/common/metrics"
	"loanmatch-workers/internal/engine"
	"loanmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "fetch-active-products"
)

const activeProductsQuery = `
	SELECT p.id, p.lender_id, p.name, p.description, p.type, p.active,
	       p.requirements, p.limits, p.weights, p.external_apply_url,
	       l.name, l.active, l.brand_color, l.website, l.referral_url, l.referral_params
	FROM products p
	JOIN lenders l ON l.id = p.lender_id
	WHERE p.active = true AND l.active = true
	ORDER BY p.id`

type Handler struct {
	config       *Config
	db           *sql.DB
	redis        *redis.Client
	logger       logger.Logger
	errorHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		db:           db,
		redis:        rdb,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		errorHandler: stderrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// execute resolves the catalog cache-first. An empty catalog is a valid
// result; only retrieval failures become errors.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.BypassCache {
		if products, ok := h.fromCache(ctx); ok {
			metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
			return &Output{Products: products, Count: len(products), FromCache: true}, nil
		}
		metrics.CatalogCacheHits.WithLabelValues("miss").Inc()
	}

	products, err := h.fromDatabase(ctx)
	if err != nil {
		return nil, stderrors.NewCatalogFetchFailedError(err)
	}

	h.cache(ctx, products)

	h.logger.Info("catalog fetched", map[string]interface{}{
		"count": len(products),
	})

	return &Output{Products: products, Count: len(products), FromCache: false}, nil
}

func (h *Handler) fromCache(ctx context.Context) ([]*engine.Product, bool) {
	val, err := h.redis.Get(ctx, h.config.CacheKey).Result()
	if err != nil {
		return nil, false
	}

	var products []*engine.Product
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		h.logger.Warn("cached catalog is corrupt, refetching", map[string]interface{}{
			"error": err,
		})
		h.redis.Del(ctx, h.config.CacheKey)
		return nil, false
	}
	return products, true
}

func (h *Handler) cache(ctx context.Context, products []*engine.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, h.config.CacheKey, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("catalog cache write failed", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) fromDatabase(ctx context.Context) ([]*engine.Product, error) {
	rows, err := h.db.QueryContext(ctx, activeProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("query active products: %w", err)
	}
	defer rows.Close()

	products := make([]*engine.Product, 0)
	for rows.Next() {
		var row models.ProductRow
		err := rows.Scan(
			&row.ID, &row.LenderID, &row.Name, &row.Description, &row.Category, &row.Active,
			&row.Requirements, &row.Limits, &row.Weights, &row.ExternalApplyURL,
			&row.LenderName, &row.LenderActive, &row.LenderBrandColor, &row.LenderWebsite,
			&row.LenderReferralURL, &row.LenderReferralParams,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, row.ToEngineProduct())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
