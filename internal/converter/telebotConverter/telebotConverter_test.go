package telebotConverter

import (
	"strings"
	"testing"
	"time"

	"github.com/KotFed0t/stock_watchlist_bot/internal/calculator"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model/tg/tgCallback"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

// closes builds a newest-first series from closes given oldest first.
func closes(values ...int64) []model.PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res := make([]model.PricePoint, len(values))
	for i, v := range values {
		c := decimal.NewFromInt(v)
		res[len(values)-1-i] = model.PricePoint{
			Date:       start.AddDate(0, 0, i),
			ClosePrice: c,
			HighPrice:  c,
			LowPrice:   c,
			Volume:     100,
		}
	}
	return res
}

func buttons(markup *tele.ReplyMarkup) map[string]tele.InlineButton {
	res := make(map[string]tele.InlineButton)
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			res[btn.Text] = btn
		}
	}
	return res
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▂▃▄▅▆▇█", Sparkline(closes(1, 2, 3, 4, 5, 6, 7, 8), 30))
	assert.Equal(t, "█▁", Sparkline(closes(10, 2), 30))
	assert.Equal(t, "▅▅▅", Sparkline(closes(5, 5, 5), 30))
	assert.Empty(t, Sparkline(nil, 30))
}

func TestSparkline_Sampled(t *testing.T) {
	values := make([]int64, 100)
	for i := range values {
		values[i] = int64(i)
	}

	line := []rune(Sparkline(closes(values...), 10))

	require.Len(t, line, 10)
	assert.Equal(t, '▁', line[0])
	assert.Equal(t, '█', line[9])
	assert.Equal(t, "█", Sparkline(closes(values...), 1))
}

func TestStockDetailResponse_Loaded(t *testing.T) {
	points := closes(100, 105, 110)
	detail := model.StockDetail{
		StockID:         1,
		Stock:           &model.Stock{ID: 1, Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.NewFromInt(110)},
		InWatchlist:     true,
		Window:          model.Window1M,
		FullSeriesCount: 3,
		Points:          points,
		Stats:           calculator.PriceStats(points),
		Notice:          "Added to watchlist",
	}

	text, markup := StockDetailResponse(detail)

	assert.Contains(t, text, "Apple Inc. (AAPL)")
	assert.Contains(t, text, "⭐ In watchlist")
	assert.Contains(t, text, "Added to watchlist")
	assert.Contains(t, text, "1 month (3 of 3 points)")
	assert.Contains(t, text, "Period change: +10.00 (+10.00%)")
	assert.Contains(t, text, "Average volume: 100")
	assert.Contains(t, text, "▁▅█")

	btns := buttons(markup)
	assert.Contains(t, btns, "• 1M")
	assert.Contains(t, btns, "ALL")
	assert.Contains(t, btns, "✖ Remove from watchlist")
	assert.Contains(t, btns, "📥 Export xlsx")
	assert.NotContains(t, btns, "🧪 Generate mock data")
	assert.Equal(t, tgCallback.SelectWindow, btns["ALL"].Unique)
	assert.Equal(t, "ALL", btns["ALL"].Data)
}

func TestStockDetailResponse_PriceError(t *testing.T) {
	detail := model.StockDetail{
		StockID:             1,
		Stock:               &model.Stock{ID: 1, Symbol: "AAPL", Name: "Apple Inc."},
		Window:              model.WindowAll,
		PriceError:          "Network problem while loading prices. Generate mock data instead.",
		CanGenerateMockData: true,
	}

	text, markup := StockDetailResponse(detail)

	assert.Contains(t, text, "⚠️ Network problem")
	assert.NotContains(t, text, "Period change")

	btns := buttons(markup)
	assert.Contains(t, btns, "🧪 Generate mock data")
	assert.Contains(t, btns, "⭐ Add to watchlist")
	assert.NotContains(t, btns, "📥 Export xlsx")
	assert.NotContains(t, btns, "ALL")
}

func TestStockDetailResponse_NotFound(t *testing.T) {
	text, markup := StockDetailResponse(model.StockDetail{StockID: 9, LoadError: "failed to load stock info"})

	assert.True(t, strings.HasPrefix(text, "❌ Stock not found"))
	assert.Contains(t, text, "failed to load stock info")

	btns := buttons(markup)
	require.Len(t, btns, 1)
	assert.Equal(t, tgCallback.BackHome, btns["🏠 Home"].Unique)
}

func TestStockListResponse_Pagination(t *testing.T) {
	list := model.StockList{
		Stocks:      []model.Stock{{ID: 4, Symbol: "MSFT", Name: "Microsoft", Price: decimal.RequireFromString("410.5")}},
		Page:        1,
		HasNextPage: true,
	}

	text, markup := StockListResponse(list)

	assert.Contains(t, text, "MSFT - Microsoft, 410.50")

	btns := buttons(markup)
	assert.Equal(t, "0", btns["⬅ previous"].Data)
	assert.Equal(t, "2", btns["next ➡"].Data)
	assert.Equal(t, "4", btns["MSFT Microsoft"].Data)
	assert.Equal(t, tgCallback.OpenStock, btns["MSFT Microsoft"].Unique)
}

func TestWatchlistResponse_Empty(t *testing.T) {
	text, markup := WatchlistResponse(model.Watchlist{})

	assert.Contains(t, text, "Your watchlist is empty")
	assert.Len(t, buttons(markup), 1)
}

func TestExportCaption(t *testing.T) {
	assert.Equal(t, "📥 AAPL_1M.xlsx", ExportCaption(model.ExportFile{Name: "AAPL_1M.xlsx", Content: []byte("x")}))
	assert.Contains(t, ExportCaption(model.ExportFile{Name: "AAPL_ALL.xlsx", DownloadLink: "https://drive.google.com/file/d/abc/view"}), "https://drive.google.com/file/d/abc/view")
}
