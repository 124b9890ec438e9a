package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceStats struct {
	Count int

	Latest   PricePoint
	Previous *PricePoint // nil when the period has a single point

	// Change and ChangePercent compare Latest with Previous.
	HasChange     bool
	Change        decimal.Decimal
	HasChangePct  bool
	ChangePercent decimal.Decimal

	High     decimal.Decimal
	HighDate time.Time
	Low      decimal.Decimal
	LowDate  time.Time

	Oldest PricePoint

	// PeriodChange compares the newest close with the oldest close of the period.
	HasPeriodChange     bool
	PeriodChange        decimal.Decimal
	HasPeriodChangePct  bool
	PeriodChangePercent decimal.Decimal

	AverageVolume int64
}

// StockDetail is a snapshot of the stock detail view. It is never mutated after creation.
type StockDetail struct {
	Generation uint64
	StockID    int64

	Stock     *Stock
	LoadError string

	InWatchlist bool

	Window          TimeWindow
	FullSeriesCount int
	Points          []PricePoint
	Stats           *PriceStats

	PriceError          string
	CanGenerateMockData bool

	Notice string
}

func (d StockDetail) Loaded() bool {
	return d.Stock != nil
}
