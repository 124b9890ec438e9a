package calculator

import (
	"testing"
	"time"

	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func point(d int, close string) model.PricePoint {
	c := decimal.RequireFromString(close)
	return model.PricePoint{
		Date:       day(d),
		OpenPrice:  c,
		ClosePrice: c,
		HighPrice:  c,
		LowPrice:   c,
	}
}

func TestPriceStats_Empty(t *testing.T) {
	assert.Nil(t, PriceStats(nil))
	assert.Nil(t, PriceStats([]model.PricePoint{}))
}

func TestPriceStats_PeriodChange(t *testing.T) {
	stats := PriceStats([]model.PricePoint{point(1, "100"), point(2, "110")})
	require.NotNil(t, stats)

	require.True(t, stats.HasPeriodChange)
	assert.Equal(t, "+10.00 (+10.00%)", FormatChange(stats.PeriodChange, stats.PeriodChangePercent, stats.HasPeriodChangePct))
	assert.Equal(t, day(1), stats.Oldest.Date)
	assert.Equal(t, day(2), stats.Latest.Date)
}

func TestPriceStats_PeriodChangeNewestFirst(t *testing.T) {
	stats := PriceStats([]model.PricePoint{point(2, "110"), point(1, "100")})
	require.NotNil(t, stats)

	assert.Equal(t, "+10.00 (+10.00%)", FormatChange(stats.PeriodChange, stats.PeriodChangePercent, stats.HasPeriodChangePct))
}

func TestPriceStats_AverageVolume(t *testing.T) {
	series := []model.PricePoint{point(3, "1"), point(2, "1"), point(1, "1")}
	series[0].Volume = 100
	series[1].Volume = 200
	series[2].Volume = 300

	stats := PriceStats(series)
	require.NotNil(t, stats)
	assert.Equal(t, int64(200), stats.AverageVolume)
}

func TestPriceStats_AverageVolumeRounds(t *testing.T) {
	series := []model.PricePoint{point(2, "1"), point(1, "1")}
	series[0].Volume = 100
	series[1].Volume = 101

	assert.Equal(t, int64(101), PriceStats(series).AverageVolume)
}

func TestPriceStats_LatestAndPreviousByDateNotPosition(t *testing.T) {
	series := []model.PricePoint{point(3, "103"), point(5, "120"), point(1, "101"), point(4, "100")}

	stats := PriceStats(series)
	require.NotNil(t, stats)

	assert.Equal(t, day(5), stats.Latest.Date)
	require.NotNil(t, stats.Previous)
	assert.Equal(t, day(4), stats.Previous.Date)
	require.True(t, stats.HasChange)
	assert.Equal(t, "+20.00 (+20.00%)", FormatChange(stats.Change, stats.ChangePercent, stats.HasChangePct))

	assert.Equal(t, day(1), stats.Oldest.Date)
	assert.Equal(t, "+19.00 (+18.81%)", FormatChange(stats.PeriodChange, stats.PeriodChangePercent, stats.HasPeriodChangePct))
}

func TestPriceStats_HighLowWithDates(t *testing.T) {
	series := []model.PricePoint{point(3, "10"), point(2, "10"), point(1, "10")}
	series[1].HighPrice = decimal.RequireFromString("15.5")
	series[2].LowPrice = decimal.RequireFromString("7.25")

	stats := PriceStats(series)
	require.NotNil(t, stats)

	assert.True(t, decimal.RequireFromString("15.5").Equal(stats.High))
	assert.Equal(t, day(2), stats.HighDate)
	assert.True(t, decimal.RequireFromString("7.25").Equal(stats.Low))
	assert.Equal(t, day(1), stats.LowDate)
}

func TestPriceStats_SinglePoint(t *testing.T) {
	stats := PriceStats([]model.PricePoint{point(1, "50")})
	require.NotNil(t, stats)

	assert.Nil(t, stats.Previous)
	assert.False(t, stats.HasChange)
	assert.False(t, stats.HasPeriodChange)
	assert.Equal(t, 1, stats.Count)
}

func TestPriceStats_NegativeChange(t *testing.T) {
	stats := PriceStats([]model.PricePoint{point(2, "90"), point(1, "100")})
	require.NotNil(t, stats)

	assert.Equal(t, "-10.00 (-10.00%)", FormatChange(stats.Change, stats.ChangePercent, stats.HasChangePct))
}

func TestPriceStats_ZeroPreviousClose(t *testing.T) {
	stats := PriceStats([]model.PricePoint{point(2, "5"), point(1, "0")})
	require.NotNil(t, stats)

	assert.True(t, stats.HasChange)
	assert.False(t, stats.HasChangePct)
	assert.Equal(t, "+5.00", FormatChange(stats.Change, stats.ChangePercent, stats.HasChangePct))
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatVolume(1234567))
	assert.Equal(t, "200", FormatVolume(200))
}
