// Package detailView holds the state of the stock detail page of a chat.
//
// A View loads a stock, resolves its price history, applies the selected time
// window and hands out immutable model.StockDetail snapshots. Every Load issues a
// new generation; results of a superseded generation are discarded.
package detailView

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/stock_watchlist_bot/internal/calculator"
	"github.com/KotFed0t/stock_watchlist_bot/internal/externalApi"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service"
	"github.com/KotFed0t/stock_watchlist_bot/utils"
)

const (
	stockLoadErrMsg = "failed to load stock info"

	addedNotice          = "Added to watchlist"
	removedNotice        = "Removed from watchlist"
	watchlistFailNotice  = "Failed to update watchlist, try again later"
	mockDataFailNotice   = "Failed to generate mock data, try again later"
	mockDataDefaultReply = "Mock data generated"
)

type StockApi interface {
	GetStock(ctx context.Context, stockID int64) (model.Stock, error)
	CheckInWatchlist(ctx context.Context, stockID int64) (bool, error)
	AddToWatchlist(ctx context.Context, stockID int64) (model.WatchlistItem, error)
	RemoveFromWatchlist(ctx context.Context, stockID int64) error
	GenerateMockData(ctx context.Context, stockID int64, days int) (string, error)
}

type PriceResolver interface {
	Resolve(ctx context.Context, stockID int64, symbol string) ([]model.PricePoint, error)
}

type View struct {
	stockApi     StockApi
	resolver     PriceResolver
	mockDataDays int
	now          func() time.Time

	mu          sync.Mutex
	generation  uint64
	stockID     int64
	stock       *model.Stock
	loadErr     string
	inWatchlist bool
	window      model.TimeWindow
	fullSeries  []model.PricePoint
	priceErr    error
	notice      string
	lastUsed    time.Time
}

func New(stockApi StockApi, resolver PriceResolver, defaultWindow model.TimeWindow, mockDataDays int) *View {
	return &View{
		stockApi:     stockApi,
		resolver:     resolver,
		mockDataDays: mockDataDays,
		now:          time.Now,
		window:       defaultWindow,
		lastUsed:     time.Now(),
	}
}

// Load shows stockID in the view. The selected window is kept.
// A stock failure is returned as service.ErrStockNotFound or service.ErrNetworkFailure,
// price failures are reported through StockDetail.PriceError only.
func (v *View) Load(ctx context.Context, stockID int64) (model.StockDetail, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "View.Load"

	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.stockID = stockID
	v.stock = nil
	v.loadErr = ""
	v.inWatchlist = false
	v.fullSeries = nil
	v.priceErr = nil
	v.notice = ""
	v.lastUsed = v.now()
	v.mu.Unlock()

	slog.Debug("Load start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("stockID", stockID), slog.Uint64("generation", gen))

	stock, err := v.stockApi.GetStock(ctx, stockID)
	if err != nil {
		slog.Error("got error from stockApi.GetStock", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

		if !v.commit(gen, func() { v.loadErr = stockLoadErrMsg }) {
			return model.StockDetail{}, service.ErrStaleResponse
		}
		if errors.Is(err, externalApi.ErrNotFound) {
			return v.Snapshot(), fmt.Errorf("%w: %s", service.ErrStockNotFound, err.Error())
		}
		return v.Snapshot(), fmt.Errorf("%w: %s", service.ErrNetworkFailure, err.Error())
	}

	if !v.commit(gen, func() { v.stock = &stock }) {
		return model.StockDetail{}, service.ErrStaleResponse
	}

	inWatchlist, err := v.stockApi.CheckInWatchlist(ctx, stockID)
	if err != nil {
		slog.Warn("watchlist check failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		inWatchlist = false
	}

	if !v.commit(gen, func() { v.inWatchlist = inWatchlist }) {
		return model.StockDetail{}, service.ErrStaleResponse
	}

	series, err := v.resolver.Resolve(ctx, stockID, stock.Symbol)
	if err != nil {
		slog.Warn("price resolution failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	if !v.commit(gen, func() {
		v.fullSeries = series
		v.priceErr = err
	}) {
		return model.StockDetail{}, service.ErrStaleResponse
	}

	slog.Debug("Load completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("stockID", stockID), slog.Int("points", len(series)))

	return v.Snapshot(), nil
}

// SelectWindow filters the series already held by the view. No requests are made.
func (v *View) SelectWindow(window model.TimeWindow) model.StockDetail {
	v.mu.Lock()
	v.window = window
	v.lastUsed = v.now()
	v.mu.Unlock()

	return v.Snapshot()
}

// ToggleWatchlist adds the stock to the watchlist or removes it, then re-checks membership.
func (v *View) ToggleWatchlist(ctx context.Context) (model.StockDetail, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "View.ToggleWatchlist"

	gen, stock, inWatchlist, err := v.loadedState()
	if err != nil {
		return v.Snapshot(), err
	}
	stockID := stock.ID

	slog.Debug("ToggleWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("stockID", stockID), slog.Bool("inWatchlist", inWatchlist))

	if inWatchlist {
		err = v.stockApi.RemoveFromWatchlist(ctx, stockID)
	} else {
		_, err = v.stockApi.AddToWatchlist(ctx, stockID)
	}
	if err != nil {
		slog.Error("watchlist operation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		if !v.commit(gen, func() { v.notice = watchlistFailNotice }) {
			return model.StockDetail{}, service.ErrStaleResponse
		}
		return v.Snapshot(), fmt.Errorf("%w: %s", service.ErrWatchlistOperationFailed, err.Error())
	}

	actual, err := v.stockApi.CheckInWatchlist(ctx, stockID)
	if err != nil {
		slog.Warn("watchlist re-check failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		actual = !inWatchlist
	}

	notice := addedNotice
	if !actual {
		notice = removedNotice
	}

	if !v.commit(gen, func() {
		v.inWatchlist = actual
		v.notice = notice
	}) {
		return model.StockDetail{}, service.ErrStaleResponse
	}

	return v.Snapshot(), nil
}

// GenerateMockData asks the backend to synthesize price history for the stock
// and resolves the series again.
func (v *View) GenerateMockData(ctx context.Context) (model.StockDetail, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "View.GenerateMockData"

	gen, stock, _, err := v.loadedState()
	if err != nil {
		return v.Snapshot(), err
	}
	stockID, symbol := stock.ID, stock.Symbol

	slog.Info("generating mock data", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("stockID", stockID), slog.Int("days", v.mockDataDays))

	reply, err := v.stockApi.GenerateMockData(ctx, stockID, v.mockDataDays)
	if err != nil {
		slog.Error("got error from stockApi.GenerateMockData", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		if !v.commit(gen, func() { v.notice = mockDataFailNotice }) {
			return model.StockDetail{}, service.ErrStaleResponse
		}
		return v.Snapshot(), fmt.Errorf("%w: %s", service.ErrMockDataGenerationFailed, err.Error())
	}
	if reply == "" {
		reply = mockDataDefaultReply
	}

	series, err := v.resolver.Resolve(ctx, stockID, symbol)
	if err != nil {
		slog.Warn("price resolution after mock data generation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	if !v.commit(gen, func() {
		v.fullSeries = series
		v.priceErr = err
		v.notice = reply
	}) {
		return model.StockDetail{}, service.ErrStaleResponse
	}

	return v.Snapshot(), nil
}

// Snapshot returns the current view model and consumes the pending notice.
func (v *View) Snapshot() model.StockDetail {
	v.mu.Lock()
	defer v.mu.Unlock()

	detail := v.detail()
	v.notice = ""
	return detail
}

// Peek returns the current view model and leaves the pending notice in place.
func (v *View) Peek() model.StockDetail {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.detail()
}

// detail builds the view model. v.mu must be held.
func (v *View) detail() model.StockDetail {
	points := v.window.Apply(v.fullSeries)

	detail := model.StockDetail{
		Generation:      v.generation,
		StockID:         v.stockID,
		LoadError:       v.loadErr,
		InWatchlist:     v.inWatchlist,
		Window:          v.window,
		FullSeriesCount: len(v.fullSeries),
		Points:          points,
		Stats:           calculator.PriceStats(points),
		Notice:          v.notice,
	}

	if v.stock != nil {
		stock := *v.stock
		detail.Stock = &stock
	}

	if v.priceErr != nil {
		detail.PriceError = PriceErrorBanner(v.priceErr)
		detail.CanGenerateMockData = true
	}

	return detail
}

func (v *View) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stock != nil
}

// IdleSince reports the time of the last operation on the view.
func (v *View) IdleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

// invalidate makes every operation in flight stale.
func (v *View) invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generation++
}

// commit applies fn if gen is still the latest generation.
func (v *View) commit(gen uint64, fn func()) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		slog.Debug("discarding stale response", slog.Uint64("generation", gen), slog.Uint64("latest", v.generation))
		return false
	}

	fn()
	v.lastUsed = v.now()
	return true
}

func (v *View) loadedState() (gen uint64, stock model.Stock, inWatchlist bool, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lastUsed = v.now()

	if v.stock == nil {
		return 0, model.Stock{}, false, service.ErrStockNotLoaded
	}
	stock = *v.stock
	stock.ID = v.stockID
	return v.generation, stock, v.inWatchlist, nil
}
