package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Stock struct {
	ID     int64
	Symbol string
	Name   string
	Price  decimal.Decimal
}

// PricePoint is one trading day of a stock.
type PricePoint struct {
	ID         int64
	StockID    int64
	Symbol     string
	Date       time.Time
	OpenPrice  decimal.Decimal
	ClosePrice decimal.Decimal
	HighPrice  decimal.Decimal
	LowPrice   decimal.Decimal
	Volume     int64
}

type WatchlistItem struct {
	ID      int64
	StockID int64
	Stock   Stock
}
