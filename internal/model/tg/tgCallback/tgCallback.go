package tgCallback

// Callbacks buttons uniques. Buttons that point at a stock carry its id as payload,
// SelectWindow carries the window and StocksPage the page number.
const (
	OpenStock           string = "open_stock"
	SelectWindow        string = "select_window"
	ToggleWatchlist     string = "toggle_watchlist"
	GenerateMockData    string = "generate_mock_data"
	ExportPrices        string = "export_prices"
	OpenWatchlist       string = "open_watchlist"
	RemoveFromWatchlist string = "remove_from_watchlist"
	BackHome            string = "back_home"
	StocksPage          string = "stocks_page"
)
