package detailView

import (
	"errors"

	"github.com/KotFed0t/stock_watchlist_bot/internal/service"
)

const (
	quotaBanner     = "Alpha Vantage API usage limit reached. Generate mock data to keep testing.\nThe free tier allows 25 requests per day and resets at 00:00 UTC."
	malformedBanner = "The price API returned data in an unexpected format. Generate mock data instead."
	networkBanner   = "Network problem while loading prices. Generate mock data instead."
	unknownBanner   = "Failed to load price data. Generate mock data instead."
)

// PriceErrorBanner turns a price resolution error into the message shown above the chart.
func PriceErrorBanner(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrProviderQuotaExceeded):
		return quotaBanner
	case errors.Is(err, service.ErrMalformedResponse):
		return malformedBanner
	case errors.Is(err, service.ErrNetworkFailure):
		return networkBanner
	default:
		return unknownBanner
	}
}
