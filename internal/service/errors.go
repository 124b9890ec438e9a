package service

import "errors"

var (
	ErrStockNotFound            = errors.New("error stock not found")
	ErrNetworkFailure           = errors.New("error network failure")
	ErrProviderQuotaExceeded    = errors.New("error price provider quota exceeded")
	ErrMalformedResponse        = errors.New("error malformed price response")
	ErrWatchlistOperationFailed = errors.New("error watchlist operation failed")
	ErrMockDataGenerationFailed = errors.New("error mock data generation failed")
	ErrStockNotLoaded           = errors.New("error stock is not loaded")
	ErrExportFailed             = errors.New("error export failed")

	// ErrStaleResponse is returned when a newer load superseded the request.
	ErrStaleResponse = errors.New("error stale response")
)
