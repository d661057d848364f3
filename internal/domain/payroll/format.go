package payroll

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Round2 rounds half away from zero to two decimals. Binary noise below
// 1e-9 is dropped first so 848.475 becomes 848.48. Only presentation code
// calls it; the engine keeps full precision.
func Round2(value float64) float64 {
	return math.Round(math.Round(value*1e9)/1e7) / 100
}

// FormatAmount renders an amount with thousands separators and two
// decimals, e.g. 1,074.75.
func FormatAmount(value float64) string {
	return humanize.FormatFloat("#,###.##", Round2(value))
}

// FormatPercent renders a rate such as 0.055 as 5.5%.
func FormatPercent(rate float64) string {
	return strconv.FormatFloat(math.Round(rate*10000)/100, 'f', -1, 64) + "%"
}
