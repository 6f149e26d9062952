package store

import (
	"math"
	"strconv"
)

// formatNumber renders a value with the given number of significant digits,
// switching to scientific notation for magnitudes that would not fit.
// Used for the textual form of ordinary (non-bitfield) samples.
func formatNumber(value float64, digits int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'g', -1, 64)
	}

	return strconv.FormatFloat(value, 'g', digits, 64)
}
