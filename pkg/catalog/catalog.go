// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Load reads and validates a catalog seed file. Validation runs before
// decoding so a malformed file reports every schema violation at once
// instead of failing on the first bad field.
func Load(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes raw seed file content.
func Parse(data []byte) (*SeedFile, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	if err := checkReferences(&seed); err != nil {
		return nil, err
	}

	return &seed, nil
}

// Validate checks raw content against the seed schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(seedSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate seed file: %w", err)
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return fmt.Errorf("seed file invalid: %s", strings.Join(violations, "; "))
	}

	return nil
}

// checkReferences enforces what the schema cannot: unique ids across
// the whole file.
func checkReferences(seed *SeedFile) error {
	lenderIDs := make(map[string]bool)
	productIDs := make(map[string]bool)

	for _, lender := range seed.Lenders {
		if lenderIDs[lender.ID] {
			return fmt.Errorf("duplicate lender id: %s", lender.ID)
		}
		lenderIDs[lender.ID] = true

		for _, product := range lender.Products {
			if productIDs[product.ID] {
				return fmt.Errorf("duplicate product id: %s", product.ID)
			}
			productIDs[product.ID] = true
		}
	}

	return nil
}

// ProductCount returns the total number of products across all lenders.
func (s *SeedFile) ProductCount() int {
	count := 0
	for _, lender := range s.Lenders {
		count += len(lender.Products)
	}
	return count
}
