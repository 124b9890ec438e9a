package stockApiModel

import "github.com/shopspring/decimal"

type Stock struct {
	ID     int64           `json:"id"`
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

type WatchlistItem struct {
	ID      int64 `json:"id"`
	StockID int64 `json:"stockId"`
	Stock   Stock `json:"stock"`
}

type AddToWatchlistRequest struct {
	StockID int64 `json:"stockId"`
}

type CheckWatchlistResponse struct {
	InWatchlist bool `json:"inWatchlist"`
}

// RawPricePoints is a price history response decoded without a schema,
// so that every field type can be checked before it is trusted.
type RawPricePoints []map[string]any
