// Package priceResolver picks the price history of a stock from the mock data store
// and falls back to the external market data provider when the store is empty.
package priceResolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/stock_watchlist_bot/internal/externalApi"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service"
	"github.com/KotFed0t/stock_watchlist_bot/utils"
)

type MockStore interface {
	GetStockPrices(ctx context.Context, stockID int64) ([]model.PricePoint, error)
}

type MarketDataProvider interface {
	GetAlphaVantagePrices(ctx context.Context, symbol string) ([]model.PricePoint, error)
}

type PriceResolver struct {
	mockStore MockStore
	provider  MarketDataProvider
}

func New(mockStore MockStore, provider MarketDataProvider) *PriceResolver {
	return &PriceResolver{
		mockStore: mockStore,
		provider:  provider,
	}
}

// Resolve returns a non-empty newest-first series or one of service.ErrNetworkFailure,
// service.ErrProviderQuotaExceeded, service.ErrMalformedResponse.
// The provider is asked only when the mock store has no points.
func (r *PriceResolver) Resolve(ctx context.Context, stockID int64, symbol string) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceResolver.Resolve"

	slog.Debug("Resolve start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("stockID", stockID), slog.String("symbol", symbol))

	series, found, err := r.fromMockStore(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if found {
		slog.Debug("resolved from mock store", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(series)))
		return series, nil
	}

	slog.Info("no mock data, asking market data provider", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))

	series, err = r.fromProvider(ctx, stockID, symbol)
	if err != nil {
		slog.Warn("market data provider failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("resolved from market data provider", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(series)))

	return series, nil
}

func (r *PriceResolver) fromMockStore(ctx context.Context, stockID int64) (series []model.PricePoint, found bool, err error) {
	series, err = r.mockStore.GetStockPrices(ctx, stockID)
	if err != nil {
		if errors.Is(err, externalApi.ErrBadResponse) {
			return nil, false, fmt.Errorf("%w: %s", service.ErrMalformedResponse, err.Error())
		}
		return nil, false, fmt.Errorf("%w: %s", service.ErrNetworkFailure, err.Error())
	}
	return series, len(series) > 0, nil
}

func (r *PriceResolver) fromProvider(ctx context.Context, stockID int64, symbol string) ([]model.PricePoint, error) {
	series, err := r.provider.GetAlphaVantagePrices(ctx, symbol)
	if err != nil {
		if errors.Is(err, externalApi.ErrBadResponse) {
			return nil, fmt.Errorf("%w: %s", service.ErrMalformedResponse, err.Error())
		}
		return nil, fmt.Errorf("%w: %s", service.ErrNetworkFailure, err.Error())
	}

	// the backend answers with an empty list once the provider quota is used up
	if len(series) == 0 {
		return nil, service.ErrProviderQuotaExceeded
	}

	stamped := make([]model.PricePoint, len(series))
	for i, point := range series {
		point.StockID = stockID
		stamped[i] = point
	}

	return stamped, nil
}
