package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is the sentinel used when a record carries no category.
const DefaultCategory = "General"

type (
	// Expense is the canonical record of one spending event. Every record
	// handed to the aggregation engine or a backend has passed through the
	// Normalizer and is fully populated.
	Expense struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Amount    float64 `json:"amount"`
		Category  string  `json:"category"`
		CreatedAt string  `json:"createdAt"`
	}

	// NewExpense is the validated creation payload.
	NewExpense struct {
		Name     string  `json:"name"`
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
	}

	// ExpensePatch is a partial update. Nil fields are left untouched.
	ExpensePatch struct {
		Name     *string  `json:"name,omitempty"`
		Amount   *float64 `json:"amount,omitempty"`
		Category *string  `json:"category,omitempty"`
	}

	// RawExpense is a partially-formed record as it arrives from a wire
	// payload or a durable slot. Field types are deliberately loose so that
	// malformed data can be decoded and repaired instead of rejected.
	RawExpense struct {
		ID        any `json:"id"`
		Name      any `json:"name"`
		Amount    any `json:"amount"`
		Category  any `json:"category"`
		CreatedAt any `json:"createdAt"`
	}
)

// Normalizer converts raw records into canonical Expenses. Identity and
// clock sources are injected so tests can pin them.
type Normalizer struct {
	Now   func() time.Time
	NewID func() string
}

// NewNormalizer returns a Normalizer backed by the system clock and UUID
// identity.
func NewNormalizer() Normalizer {
	return Normalizer{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Normalize repairs a raw record into a canonical Expense. It is total:
// every input, however malformed, produces a fully-populated record.
// Missing identity and timestamp are generated; non-numeric amounts coerce
// to zero; a blank category becomes the sentinel.
func (n Normalizer) Normalize(raw RawExpense) Expense {
	e := Expense{
		ID:        coerceString(raw.ID),
		Name:      coerceString(raw.Name),
		Amount:    coerceAmount(raw.Amount),
		Category:  coerceString(raw.Category),
		CreatedAt: coerceString(raw.CreatedAt),
	}

	if e.ID == "" {
		e.ID = n.NewID()
	}
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if e.CreatedAt == "" {
		e.CreatedAt = n.Now().UTC().Format(time.RFC3339)
	}

	return e
}

// NormalizeAll repairs a whole sequence, preserving order.
func (n Normalizer) NormalizeAll(raws []RawExpense) []Expense {
	out := make([]Expense, len(raws))
	for i, raw := range raws {
		out[i] = n.Normalize(raw)
	}
	return out
}

// FromPayload builds a canonical Expense from a validated creation payload.
func (n Normalizer) FromPayload(p NewExpense) Expense {
	return n.Normalize(RawExpense{
		Name:     p.Name,
		Amount:   p.Amount,
		Category: p.Category,
	})
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64, float32, int, int64, bool:
		return strings.TrimSpace(fmt.Sprint(s))
	default:
		return ""
	}
}

func coerceAmount(v any) float64 {
	var f float64
	switch a := v.(type) {
	case float64:
		f = a
	case float32:
		f = float64(a)
	case int:
		f = float64(a)
	case int64:
		f = float64(a)
	case json.Number:
		parsed, err := a.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// createdAtLayouts covers the timestamp shapes observed in persisted and
// remote data: RFC3339 with or without sub-second precision or offset, and
// bare calendar dates.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCreatedAt parses a record timestamp. The second return value is
// false when no layout matches; callers decide whether to fail open.
func ParseCreatedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
