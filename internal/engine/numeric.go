// internal/engine/numeric.go
package engine

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AsNumber coerces a raw form or catalog value into a finite float64.
// Currency-formatted strings ("12,500") parse with separators stripped;
// empty, nil, or non-numeric values resolve to the fallback. Never panics.
func AsNumber(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case nil:
		return fallback
	case float64:
		return finiteOr(n, fallback)
	case float32:
		return finiteOr(float64(n), fallback)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		return parseNumeric(n.String(), fallback)
	case string:
		return parseNumeric(n, fallback)
	default:
		return fallback
	}
}

func parseNumeric(s string, fallback float64) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return finiteOr(f, fallback)
}

func finiteOr(f, fallback float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

// FlexNumber is a float64 that unmarshals from JSON numbers, numeric
// strings with thousands separators, empty strings, or null. Decoding
// never fails: anything non-numeric becomes 0.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*n = 0
		return nil
	}
	*n = FlexNumber(AsNumber(raw, 0))
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// DebtToIncome is the DTI risk proxy. Zero or negative income means the
// ratio is undefined, which counts as maximum risk (1) regardless of debt.
func DebtToIncome(income, debt float64) float64 {
	if income <= 0 {
		return 1
	}
	dti := debt / income
	if math.IsNaN(dti) || math.IsInf(dti, 0) {
		return 1
	}
	return dti
}

func clamp(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}
