package model

type state int

const (
	DefaultState state = iota
	ExpectingSearchQuery
)

type page int

const (
	HomePage page = iota
	StockListPage
	SearchPage
	StockDetailPage
	WatchlistPage
)

// Session is the route of a chat: which page is open and for which stock.
type Session struct {
	State   state
	Page    page
	StockID int64
	Window  TimeWindow
	Query   string
}
