package model

// StockList is one page of the catalog or of a search result.
type StockList struct {
	Stocks      []Stock
	Query       string
	Page        int
	HasNextPage bool
}

type Watchlist struct {
	Items []WatchlistItem
}

// ExportFile is a rendered report. DownloadLink is set instead of Content
// when the file is too big to be sent to the chat.
type ExportFile struct {
	Name         string
	Content      []byte
	DownloadLink string
}
