package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// JSONFloat is a float64 whose JSON form survives infinities. KL
// divergence legitimately produces +Inf on support mismatch, and
// encoding/json refuses to emit it; this type round-trips infinities as
// the strings "Infinity" and "-Infinity" instead of failing or silently
// degrading to NaN.
type JSONFloat float64

// IsInf reports whether the value is infinite
func (f JSONFloat) IsInf() bool {
	return math.IsInf(float64(f), 0)
}

// MarshalJSON implements json.Marshaler
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	switch text {
	case `"Infinity"`:
		*f = JSONFloat(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*f = JSONFloat(math.Inf(-1))
		return nil
	case "null":
		*f = JSONFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %s: %w", text, err)
	}
	*f = JSONFloat(v)
	return nil
}
