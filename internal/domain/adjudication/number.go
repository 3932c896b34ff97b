package adjudication

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Number holds a numeric field exactly as an upstream collaborator supplied it.
// The value is resolved by Float64, which falls back to 0 for absent, null or
// unparsable input instead of failing.
type Number struct {
	raw any
}

// NumberOf wraps a raw upstream value (float, int, numeric string, nil, ...).
func NumberOf(v any) Number {
	return Number{raw: v}
}

// Float wraps an already parsed value.
func Float(f float64) Number {
	return Number{raw: f}
}

// IsSet reports whether the upstream supplied any value at all.
func (n Number) IsSet() bool {
	return n.raw != nil
}

// Raw returns the value as supplied.
func (n Number) Raw() any {
	return n.raw
}

// Float64 coerces the raw value. NaN is treated like any other unparsable
// input: left as NaN it would fail every comparison and skip its guardrail.
func (n Number) Float64() float64 {
	if n.raw == nil {
		return 0
	}

	raw := n.raw
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

// UnmarshalJSON accepts any JSON value. Values that are not numbers or numeric
// strings are kept and later coerce to 0.
func (n *Number) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		n.raw = nil
		return nil
	}
	n.raw = v
	return nil
}

// MarshalJSON writes the coerced value, or null when nothing was supplied.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.raw == nil {
		return []byte("null"), nil
	}
	f := n.Float64()
	if math.IsInf(f, 0) {
		return json.Marshal(formatAmount(f))
	}
	return json.Marshal(f)
}

// formatAmount renders a float the way reason strings expect it: shortest
// round-trip digits, whole values keep a trailing ".0", very large or very
// small magnitudes switch to exponent form.
func formatAmount(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatLimit renders a configured limit; whole numbers have no decimal part.
func formatLimit(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return formatAmount(f)
}
