package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Document is the denormalized unit stored in the similarity index. It is
// derived from an employee row plus its skill associations and is rebuilt
// from scratch whenever any of its sources change; it is never patched in
// place.
type Document struct {
	ID         string            // "employee:<id>"
	EmployeeID int64
	Content    string            // the embedding unit
	Metadata   map[string]string // flat key/value, JSON-safe values only
}

// DocumentID returns the index key for an employee's document.
func DocumentID(employeeID int64) string {
	return fmt.Sprintf("employee:%d", employeeID)
}

// Neighbor is one ranked similarity-search result. Distance is a pointer so a
// missing score can be told apart from zero; rerankers sort nil last.
type Neighbor struct {
	ID         string
	EmployeeID int64
	Content    string
	Metadata   map[string]string
	Distance   *float64
}

// JSONSafe converts a value into something representable in plain key/value
// metadata: times become RFC 3339 strings, decimals become float64, byte
// blobs become best-effort UTF-8 text. Maps and slices are converted
// recursively.
func JSONSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = JSONSafe(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = JSONSafe(val)
		}
		return out
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	case decimal.Decimal:
		f, _ := t.Float64()
		return f
	case *decimal.Decimal:
		if t == nil {
			return nil
		}
		f, _ := t.Float64()
		return f
	case []byte:
		return string(t)
	default:
		return v
	}
}

// MarshalJSONSafe renders v through JSONSafe and marshals the result.
func MarshalJSONSafe(v any) (string, error) {
	b, err := json.Marshal(JSONSafe(v))
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(b), nil
}
