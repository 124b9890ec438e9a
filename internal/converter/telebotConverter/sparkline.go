package telebotConverter

import (
	"slices"

	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/shopspring/decimal"
)

const sparklineWidth = 30

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws the close prices of points oldest to newest. Series longer than
// width are sampled at evenly spaced points, the newest one always included.
func Sparkline(points []model.PricePoint, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	sorted := slices.Clone(points)
	slices.SortFunc(sorted, func(a, b model.PricePoint) int {
		return a.Date.Compare(b.Date)
	})

	closes := make([]decimal.Decimal, 0, min(width, len(sorted)))
	last := len(sorted) - 1
	switch {
	case len(sorted) <= width:
		for _, p := range sorted {
			closes = append(closes, p.ClosePrice)
		}
	case width == 1:
		closes = append(closes, sorted[last].ClosePrice)
	default:
		for i := 0; i < width; i++ {
			closes = append(closes, sorted[i*last/(width-1)].ClosePrice)
		}
	}

	lo, hi := closes[0], closes[0]
	for _, c := range closes {
		lo = decimal.Min(lo, c)
		hi = decimal.Max(hi, c)
	}

	spread := hi.Sub(lo)
	top := decimal.NewFromInt(int64(len(sparkLevels) - 1))

	line := make([]rune, 0, len(closes))
	for _, c := range closes {
		if spread.IsZero() {
			line = append(line, sparkLevels[len(sparkLevels)/2])
			continue
		}
		level := c.Sub(lo).Div(spread).Mul(top).Round(0).IntPart()
		line = append(line, sparkLevels[level])
	}

	return string(line)
}
