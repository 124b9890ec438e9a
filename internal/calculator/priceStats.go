// Package calculator derives price statistics from a displayed price series.
package calculator

import (
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceStats computes the statistics of points. The order of points does not matter:
// latest, previous and oldest are picked by date. Returns nil for an empty series.
func PriceStats(points []model.PricePoint) *model.PriceStats {
	if len(points) == 0 {
		return nil
	}

	latestIdx, oldestIdx := 0, 0
	highIdx, lowIdx := 0, 0
	volumeSum := decimal.Zero

	for i, p := range points {
		if p.Date.After(points[latestIdx].Date) {
			latestIdx = i
		}
		if p.Date.Before(points[oldestIdx].Date) {
			oldestIdx = i
		}
		if p.HighPrice.GreaterThan(points[highIdx].HighPrice) {
			highIdx = i
		}
		if p.LowPrice.LessThan(points[lowIdx].LowPrice) {
			lowIdx = i
		}
		volumeSum = volumeSum.Add(decimal.NewFromInt(p.Volume))
	}

	stats := &model.PriceStats{
		Count:         len(points),
		Latest:        points[latestIdx],
		Oldest:        points[oldestIdx],
		High:          points[highIdx].HighPrice,
		HighDate:      points[highIdx].Date,
		Low:           points[lowIdx].LowPrice,
		LowDate:       points[lowIdx].Date,
		AverageVolume: volumeSum.Div(decimal.NewFromInt(int64(len(points)))).Round(0).IntPart(),
	}

	if prevIdx, ok := previousIdx(points, latestIdx); ok {
		prev := points[prevIdx]
		stats.Previous = &prev
		stats.HasChange = true
		stats.Change, stats.ChangePercent, stats.HasChangePct = change(prev.ClosePrice, stats.Latest.ClosePrice)
	}

	if len(points) > 1 {
		stats.HasPeriodChange = true
		stats.PeriodChange, stats.PeriodChangePercent, stats.HasPeriodChangePct = change(stats.Oldest.ClosePrice, stats.Latest.ClosePrice)
	}

	return stats
}

// previousIdx returns the point with the greatest date except the one at latestIdx.
func previousIdx(points []model.PricePoint, latestIdx int) (int, bool) {
	idx := -1
	for i, p := range points {
		if i == latestIdx {
			continue
		}
		if idx == -1 || p.Date.After(points[idx].Date) {
			idx = i
		}
	}
	return idx, idx != -1
}

func change(from, to decimal.Decimal) (diff, percent decimal.Decimal, hasPercent bool) {
	diff = to.Sub(from)
	if from.IsZero() {
		return diff, decimal.Zero, false
	}
	return diff, diff.Div(from).Mul(hundred), true
}
