package apiConverter

import (
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model/stockApiModel"
)

func ConvertStock(apiStock stockApiModel.Stock) model.Stock {
	return model.Stock{
		ID:     apiStock.ID,
		Symbol: apiStock.Symbol,
		Name:   apiStock.Name,
		Price:  apiStock.Price,
	}
}

func ConvertStocks(apiStocks []stockApiModel.Stock) []model.Stock {
	stocks := make([]model.Stock, 0, len(apiStocks))
	for _, s := range apiStocks {
		stocks = append(stocks, ConvertStock(s))
	}
	return stocks
}

func ConvertWatchlistItem(apiItem stockApiModel.WatchlistItem) model.WatchlistItem {
	return model.WatchlistItem{
		ID:      apiItem.ID,
		StockID: apiItem.StockID,
		Stock:   ConvertStock(apiItem.Stock),
	}
}

func ConvertWatchlist(apiItems []stockApiModel.WatchlistItem) []model.WatchlistItem {
	items := make([]model.WatchlistItem, 0, len(apiItems))
	for _, item := range apiItems {
		items = append(items, ConvertWatchlistItem(item))
	}
	return items
}
