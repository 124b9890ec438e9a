package telebotConverter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KotFed0t/stock_watchlist_bot/internal/calculator"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model/tg/tgCallback"
	tele "gopkg.in/telebot.v4"
)

const dateFormat = "2006-01-02"

func HomeResponse() (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}

	text = "👋 Stock watchlist\n\n" +
		"/stocks - browse the catalog\n" +
		"/search <query> - find a stock by symbol or name\n" +
		"/watchlist - your watchlist\n" +
		"/stock <id> - open a stock"

	markup.Inline(
		markup.Row(
			markup.Data("📈 Stocks", tgCallback.StocksPage, "0"),
			markup.Data("⭐ Watchlist", tgCallback.OpenWatchlist),
		),
	)

	return text, markup
}

func StockListResponse(list model.StockList) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	if list.Query != "" {
		sb.WriteString(fmt.Sprintf("🔎 Search: %s\n\n", list.Query))
	} else {
		sb.WriteString("📈 Stocks\n\n")
	}

	if len(list.Stocks) == 0 {
		sb.WriteString("No stocks found")
	}

	rows := make([]tele.Row, 0, len(list.Stocks)+2)
	for _, stock := range list.Stocks {
		sb.WriteString(fmt.Sprintf("%s - %s, %s\n", stock.Symbol, stock.Name, calculator.FormatMoney(stock.Price)))
		rows = append(rows, markup.Row(
			markup.Data(fmt.Sprintf("%s %s", stock.Symbol, stock.Name), tgCallback.OpenStock, strconv.FormatInt(stock.ID, 10)),
		))
	}

	paginationBtns := make([]tele.Btn, 0, 2)
	if list.Page > 0 {
		paginationBtns = append(paginationBtns, markup.Data("⬅ previous", tgCallback.StocksPage, strconv.Itoa(list.Page-1)))
	}
	if list.HasNextPage {
		paginationBtns = append(paginationBtns, markup.Data("next ➡", tgCallback.StocksPage, strconv.Itoa(list.Page+1)))
	}
	if len(paginationBtns) > 0 {
		rows = append(rows, markup.Row(paginationBtns...))
	}

	rows = append(rows, markup.Row(markup.Data("🏠 Home", tgCallback.BackHome)))
	markup.Inline(rows...)

	return sb.String(), markup
}

func WatchlistResponse(watchlist model.Watchlist) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString("⭐ Watchlist\n\n")
	if len(watchlist.Items) == 0 {
		sb.WriteString("Your watchlist is empty")
	}

	rows := make([]tele.Row, 0, len(watchlist.Items)+1)
	for _, item := range watchlist.Items {
		stockID := strconv.FormatInt(item.StockID, 10)
		sb.WriteString(fmt.Sprintf("%s - %s, %s\n", item.Stock.Symbol, item.Stock.Name, calculator.FormatMoney(item.Stock.Price)))
		rows = append(rows, markup.Row(
			markup.Data(item.Stock.Symbol, tgCallback.OpenStock, stockID),
			markup.Data("✖ remove", tgCallback.RemoveFromWatchlist, stockID),
		))
	}

	rows = append(rows, markup.Row(markup.Data("🏠 Home", tgCallback.BackHome)))
	markup.Inline(rows...)

	return sb.String(), markup
}

// StockDetailResponse renders the detail view. A stock that failed to load is
// rendered as a "not found" page with a way back.
func StockDetailResponse(detail model.StockDetail) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	homeRow := markup.Row(markup.Data("🏠 Home", tgCallback.BackHome))

	if !detail.Loaded() {
		text = fmt.Sprintf("❌ Stock not found\n%s", detail.LoadError)
		markup.Inline(homeRow)
		return text, markup
	}

	var sb strings.Builder
	stock := detail.Stock

	sb.WriteString(fmt.Sprintf("📊 %s (%s)\n", stock.Name, stock.Symbol))
	sb.WriteString(fmt.Sprintf("💰 Price: %s\n", calculator.FormatMoney(stock.Price)))
	if detail.InWatchlist {
		sb.WriteString("⭐ In watchlist\n")
	}

	if detail.Notice != "" {
		sb.WriteString(fmt.Sprintf("\nℹ️ %s\n", detail.Notice))
	}

	if detail.PriceError != "" {
		sb.WriteString(fmt.Sprintf("\n⚠️ %s\n", detail.PriceError))
	}

	if detail.Stats != nil {
		sb.WriteString(fmt.Sprintf("\n🗓 %s (%d of %d points)\n", detail.Window.Label(), len(detail.Points), detail.FullSeriesCount))
		sb.WriteString(Sparkline(detail.Points, sparklineWidth))
		sb.WriteString("\n")
		writeStats(&sb, detail.Stats)
	}

	id := strconv.FormatInt(detail.StockID, 10)
	rows := make([]tele.Row, 0, 4)

	if detail.FullSeriesCount > 0 {
		windowBtns := make([]tele.Btn, 0, len(model.TimeWindows))
		for _, w := range model.TimeWindows {
			label := string(w)
			if w == detail.Window {
				label = "• " + label
			}
			windowBtns = append(windowBtns, markup.Data(label, tgCallback.SelectWindow, string(w)))
		}
		rows = append(rows, markup.Row(windowBtns...))
	}

	watchlistBtn := markup.Data("⭐ Add to watchlist", tgCallback.ToggleWatchlist, id)
	if detail.InWatchlist {
		watchlistBtn = markup.Data("✖ Remove from watchlist", tgCallback.ToggleWatchlist, id)
	}
	rows = append(rows, markup.Row(watchlistBtn))

	actionBtns := make([]tele.Btn, 0, 2)
	if detail.CanGenerateMockData {
		actionBtns = append(actionBtns, markup.Data("🧪 Generate mock data", tgCallback.GenerateMockData, id))
	}
	if len(detail.Points) > 0 {
		actionBtns = append(actionBtns, markup.Data("📥 Export xlsx", tgCallback.ExportPrices, id))
	}
	if len(actionBtns) > 0 {
		rows = append(rows, markup.Row(actionBtns...))
	}

	rows = append(rows, homeRow)
	markup.Inline(rows...)

	return sb.String(), markup
}

func writeStats(sb *strings.Builder, s *model.PriceStats) {
	sb.WriteString(fmt.Sprintf("Latest close: %s (%s)\n", calculator.FormatMoney(s.Latest.ClosePrice), s.Latest.Date.Format(dateFormat)))
	if s.HasChange {
		sb.WriteString(fmt.Sprintf("Day change: %s\n", calculator.FormatChange(s.Change, s.ChangePercent, s.HasChangePct)))
	}
	sb.WriteString(fmt.Sprintf("High: %s (%s)\n", calculator.FormatMoney(s.High), s.HighDate.Format(dateFormat)))
	sb.WriteString(fmt.Sprintf("Low: %s (%s)\n", calculator.FormatMoney(s.Low), s.LowDate.Format(dateFormat)))
	if s.HasPeriodChange {
		sb.WriteString(fmt.Sprintf("Period change: %s\n", calculator.FormatChange(s.PeriodChange, s.PeriodChangePercent, s.HasPeriodChangePct)))
	}
	sb.WriteString(fmt.Sprintf("Average volume: %s\n", calculator.FormatVolume(s.AverageVolume)))
	sb.WriteString(fmt.Sprintf("Period: %s - %s", s.Oldest.Date.Format(dateFormat), s.Latest.Date.Format(dateFormat)))
}

func ExportCaption(file model.ExportFile) string {
	if file.DownloadLink != "" {
		return fmt.Sprintf("📥 %s is too big for Telegram, download it here:\n%s", file.Name, file.DownloadLink)
	}
	return fmt.Sprintf("📥 %s", file.Name)
}
