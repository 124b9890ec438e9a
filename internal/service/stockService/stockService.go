package stockService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/stock_watchlist_bot/config"
	"github.com/KotFed0t/stock_watchlist_bot/internal/externalApi"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service"
	"github.com/KotFed0t/stock_watchlist_bot/utils"
)

type StockApi interface {
	GetStocks(ctx context.Context) ([]model.Stock, error)
	SearchStocks(ctx context.Context, query string) ([]model.Stock, error)
	GetWatchlist(ctx context.Context) ([]model.WatchlistItem, error)
	RemoveFromWatchlist(ctx context.Context, stockID int64) error
}

type StockService struct {
	stockApi StockApi
	perPage  int
}

func New(cfg *config.Config, stockApi StockApi) *StockService {
	perPage := cfg.StocksPerPage
	if perPage <= 0 {
		perPage = 10
	}
	return &StockService{stockApi: stockApi, perPage: perPage}
}

// ListStocks returns page (starting from 0) of the catalog.
func (s *StockService) ListStocks(ctx context.Context, page int) (model.StockList, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.ListStocks"

	slog.Debug("ListStocks start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("page", page))

	stocks, err := s.stockApi.GetStocks(ctx)
	if err != nil {
		slog.Error("got error from stockApi.GetStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockList{}, fmt.Errorf("%w: %s", service.ErrNetworkFailure, err.Error())
	}

	return s.paginate(stocks, "", page), nil
}

// SearchStocks runs a catalog search. An empty query lists the whole catalog.
func (s *StockService) SearchStocks(ctx context.Context, query string, page int) (model.StockList, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.SearchStocks"

	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListStocks(ctx, page)
	}

	slog.Debug("SearchStocks start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Int("page", page))

	stocks, err := s.stockApi.SearchStocks(ctx, query)
	if err != nil {
		slog.Error("got error from stockApi.SearchStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockList{}, fmt.Errorf("%w: %s", service.ErrNetworkFailure, err.Error())
	}

	return s.paginate(stocks, query, page), nil
}

func (s *StockService) GetWatchlist(ctx context.Context) (model.Watchlist, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.GetWatchlist"

	slog.Debug("GetWatchlist start", slog.String("rqID", rqID), slog.String("op", op))

	items, err := s.stockApi.GetWatchlist(ctx)
	if err != nil {
		slog.Error("got error from stockApi.GetWatchlist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Watchlist{}, fmt.Errorf("%w: %s", service.ErrNetworkFailure, err.Error())
	}

	return model.Watchlist{Items: items}, nil
}

// RemoveFromWatchlist removes the stock and returns the updated watchlist.
func (s *StockService) RemoveFromWatchlist(ctx context.Context, stockID int64) (model.Watchlist, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.RemoveFromWatchlist"

	slog.Debug("RemoveFromWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("stockID", stockID))

	err := s.stockApi.RemoveFromWatchlist(ctx, stockID)
	if err != nil && !errors.Is(err, externalApi.ErrNotFound) {
		slog.Error("got error from stockApi.RemoveFromWatchlist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Watchlist{}, fmt.Errorf("%w: %s", service.ErrWatchlistOperationFailed, err.Error())
	}

	return s.GetWatchlist(ctx)
}

func (s *StockService) paginate(stocks []model.Stock, query string, page int) model.StockList {
	if page < 0 {
		page = 0
	}

	from := page * s.perPage
	if from > len(stocks) {
		from = len(stocks)
	}
	to := min(from+s.perPage, len(stocks))

	return model.StockList{
		Stocks:      stocks[from:to],
		Query:       query,
		Page:        page,
		HasNextPage: to < len(stocks),
	}
}
