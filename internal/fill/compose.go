package fill

import (
	"math"
	"strconv"
	"strings"

	"github.com/xkilldash9x/autofill/internal/rules"
)

// Compose computes the new text of a field from its current value and the expanded
// rule value.
func Compose(mode rules.FillMode, current, value string) string {
	switch mode {
	case rules.Append:
		return current + value
	case rules.Prepend:
		return value + current
	case rules.Surround:
		return value + current + value
	case rules.Increment:
		return step(current, 1)
	case rules.Decrement:
		return step(current, -1)
	default:
		return value
	}
}

// step adds delta to a numeric value. Anything that does not parse as a finite number
// is returned unchanged.
func step(current string, delta float64) string {
	s := strings.TrimSpace(current)
	if s == "" {
		return current
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if (delta > 0 && n == math.MaxInt64) || (delta < 0 && n == math.MinInt64) {
			return strconv.FormatFloat(float64(n)+delta, 'f', -1, 64)
		}
		return strconv.FormatInt(n+int64(delta), 10)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return current
	}
	return strconv.FormatFloat(v+delta, 'f', -1, 64)
}
