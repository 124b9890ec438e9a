package detailView

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/KotFed0t/stock_watchlist_bot/internal/calculator"
	"github.com/KotFed0t/stock_watchlist_bot/internal/externalApi"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStockApi struct {
	mock.Mock
}

func (m *MockStockApi) GetStock(ctx context.Context, stockID int64) (model.Stock, error) {
	args := m.Called(ctx, stockID)
	return args.Get(0).(model.Stock), args.Error(1)
}

func (m *MockStockApi) CheckInWatchlist(ctx context.Context, stockID int64) (bool, error) {
	args := m.Called(ctx, stockID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockApi) AddToWatchlist(ctx context.Context, stockID int64) (model.WatchlistItem, error) {
	args := m.Called(ctx, stockID)
	return args.Get(0).(model.WatchlistItem), args.Error(1)
}

func (m *MockStockApi) RemoveFromWatchlist(ctx context.Context, stockID int64) error {
	args := m.Called(ctx, stockID)
	return args.Error(0)
}

func (m *MockStockApi) GenerateMockData(ctx context.Context, stockID int64, days int) (string, error) {
	args := m.Called(ctx, stockID, days)
	return args.String(0), args.Error(1)
}

type MockPriceResolver struct {
	mock.Mock
}

func (m *MockPriceResolver) Resolve(ctx context.Context, stockID int64, symbol string) ([]model.PricePoint, error) {
	args := m.Called(ctx, stockID, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PricePoint), args.Error(1)
}

var (
	apple     = model.Stock{ID: 1, Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.NewFromInt(190)}
	microsoft = model.Stock{ID: 2, Symbol: "MSFT", Name: "Microsoft Corp.", Price: decimal.NewFromInt(410)}
)

// series returns n daily points newest first, closing at 100, 101, ... from the oldest.
func series(stockID int64, n int) []model.PricePoint {
	newest := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	res := make([]model.PricePoint, 0, n)
	for i := 0; i < n; i++ {
		c := decimal.NewFromInt(int64(100 + n - 1 - i))
		res = append(res, model.PricePoint{
			ID:         int64(i + 1),
			StockID:    stockID,
			Date:       newest.AddDate(0, 0, -i),
			OpenPrice:  c,
			ClosePrice: c,
			HighPrice:  c,
			LowPrice:   c,
			Volume:     1000,
		})
	}
	return res
}

func newView(api *MockStockApi, resolver *MockPriceResolver) *View {
	return New(api, resolver, model.WindowAll, 365)
}

func TestLoad_Success(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("CheckInWatchlist", ctx, int64(1)).Return(true, nil)
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(series(1, 10), nil)

	detail, err := newView(api, resolver).Load(ctx, 1)

	require.NoError(t, err)
	require.True(t, detail.Loaded())
	assert.Equal(t, "AAPL", detail.Stock.Symbol)
	assert.True(t, detail.InWatchlist)
	assert.Len(t, detail.Points, 10)
	assert.Equal(t, 10, detail.FullSeriesCount)
	require.NotNil(t, detail.Stats)
	assert.Equal(t, "+9.00 (+9.00%)", calculator.FormatChange(detail.Stats.PeriodChange, detail.Stats.PeriodChangePercent, detail.Stats.HasPeriodChangePct))
	assert.Empty(t, detail.PriceError)
	assert.False(t, detail.CanGenerateMockData)
}

func TestLoad_StockFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(99)).Return(model.Stock{}, fmt.Errorf("StockApi.GetStock: %w", externalApi.ErrNotFound))

	detail, err := newView(api, resolver).Load(ctx, 99)

	assert.ErrorIs(t, err, service.ErrStockNotFound)
	assert.False(t, detail.Loaded())
	assert.Equal(t, "failed to load stock info", detail.LoadError)
	api.AssertNotCalled(t, "CheckInWatchlist", mock.Anything, mock.Anything)
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoad_StockNetworkFailure(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(model.Stock{}, fmt.Errorf("%w: timeout", externalApi.ErrNetwork))

	_, err := newView(api, resolver).Load(ctx, 1)

	assert.ErrorIs(t, err, service.ErrNetworkFailure)
}

func TestLoad_WatchlistCheckFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("CheckInWatchlist", ctx, int64(1)).Return(false, errors.New("boom"))
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(series(1, 3), nil)

	detail, err := newView(api, resolver).Load(ctx, 1)

	require.NoError(t, err)
	assert.False(t, detail.InWatchlist)
	assert.Len(t, detail.Points, 3)
}

func TestLoad_MalformedPricesLeaveDisplayEmpty(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("CheckInWatchlist", ctx, int64(1)).Return(false, nil)
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(nil, fmt.Errorf("%w: closePrice is string", service.ErrMalformedResponse))

	detail, err := newView(api, resolver).Load(ctx, 1)

	require.NoError(t, err)
	assert.True(t, detail.Loaded())
	assert.Empty(t, detail.Points)
	assert.Nil(t, detail.Stats)
	assert.Equal(t, malformedBanner, detail.PriceError)
	assert.True(t, detail.CanGenerateMockData)
}

func TestLoad_StaleResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	releaseA := make(chan time.Time)
	api.On("GetStock", ctx, int64(1)).WaitUntil(releaseA).Return(apple, nil)

	api.On("GetStock", ctx, int64(2)).Return(microsoft, nil)
	api.On("CheckInWatchlist", ctx, int64(2)).Return(true, nil)
	resolver.On("Resolve", ctx, int64(2), "MSFT").Return(series(2, 5), nil)

	view := newView(api, resolver)

	errA := make(chan error, 1)
	go func() {
		_, err := view.Load(ctx, 1)
		errA <- err
	}()

	require.Eventually(t, func() bool {
		return view.Snapshot().StockID == 1
	}, time.Second, time.Millisecond)

	detailB, err := view.Load(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", detailB.Stock.Symbol)

	close(releaseA)

	select {
	case err = <-errA:
		assert.ErrorIs(t, err, service.ErrStaleResponse)
	case <-time.After(time.Second):
		t.Fatal("load of the first stock did not finish")
	}

	detail := view.Snapshot()
	require.True(t, detail.Loaded())
	assert.Equal(t, int64(2), detail.StockID)
	assert.Equal(t, "MSFT", detail.Stock.Symbol)
	assert.True(t, detail.InWatchlist)
	assert.Len(t, detail.Points, 5)
	api.AssertNotCalled(t, "CheckInWatchlist", mock.Anything, int64(1))
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, int64(1), mock.Anything)
}

func TestSelectWindow_DoesNotRefetch(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("CheckInWatchlist", ctx, int64(1)).Return(false, nil)
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(series(1, 100), nil).Once()

	view := newView(api, resolver)
	_, err := view.Load(ctx, 1)
	require.NoError(t, err)

	detail := view.SelectWindow(model.Window1M)
	assert.Equal(t, model.Window1M, detail.Window)
	assert.Len(t, detail.Points, 30)
	assert.Equal(t, 100, detail.FullSeriesCount)
	assert.Equal(t, series(1, 100)[0].Date, detail.Points[0].Date)

	detail = view.SelectWindow(model.Window3M)
	assert.Len(t, detail.Points, 90)

	detail = view.SelectWindow(model.WindowAll)
	assert.Len(t, detail.Points, 100)

	resolver.AssertNumberOfCalls(t, "Resolve", 1)
	api.AssertNumberOfCalls(t, "GetStock", 1)
}

func TestLoad_WindowIsKept(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("GetStock", ctx, int64(2)).Return(microsoft, nil)
	api.On("CheckInWatchlist", ctx, mock.Anything).Return(false, nil)
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(series(1, 100), nil)
	resolver.On("Resolve", ctx, int64(2), "MSFT").Return(series(2, 100), nil)

	view := newView(api, resolver)
	_, err := view.Load(ctx, 1)
	require.NoError(t, err)
	view.SelectWindow(model.Window2M)

	detail, err := view.Load(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, model.Window2M, detail.Window)
	assert.Len(t, detail.Points, 60)
}

func TestToggleWatchlist_AddThenRemove(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("CheckInWatchlist", ctx, int64(1)).Return(false, nil).Once()
	api.On("CheckInWatchlist", ctx, int64(1)).Return(true, nil).Once()
	api.On("CheckInWatchlist", ctx, int64(1)).Return(false, nil).Once()
	api.On("AddToWatchlist", ctx, int64(1)).Return(model.WatchlistItem{ID: 5, StockID: 1, Stock: apple}, nil).Once()
	api.On("RemoveFromWatchlist", ctx, int64(1)).Return(nil).Once()
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(series(1, 3), nil)

	view := newView(api, resolver)
	detail, err := view.Load(ctx, 1)
	require.NoError(t, err)
	require.False(t, detail.InWatchlist)

	detail, err = view.ToggleWatchlist(ctx)
	require.NoError(t, err)
	assert.True(t, detail.InWatchlist)
	assert.Equal(t, addedNotice, detail.Notice)

	detail, err = view.ToggleWatchlist(ctx)
	require.NoError(t, err)
	assert.False(t, detail.InWatchlist)
	assert.Equal(t, removedNotice, detail.Notice)

	assert.Empty(t, view.Snapshot().Notice)
	api.AssertExpectations(t)
}

func TestPeek_KeepsPendingNotice(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("CheckInWatchlist", ctx, int64(1)).Return(true, nil)
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(series(1, 3), nil)

	view := newView(api, resolver)
	_, err := view.Load(ctx, 1)
	require.NoError(t, err)

	view.mu.Lock()
	view.notice = addedNotice
	view.mu.Unlock()

	detail := view.Peek()
	assert.Equal(t, addedNotice, detail.Notice)
	assert.Len(t, detail.Points, 3)
	assert.NotNil(t, detail.Stats)

	assert.Equal(t, addedNotice, view.Snapshot().Notice)
	assert.Empty(t, view.Snapshot().Notice)
}

func TestToggleWatchlist_Failure(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("CheckInWatchlist", ctx, int64(1)).Return(false, nil).Once()
	api.On("AddToWatchlist", ctx, int64(1)).Return(model.WatchlistItem{}, fmt.Errorf("%w: 500", externalApi.ErrBadStatus))
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(series(1, 3), nil)

	view := newView(api, resolver)
	_, err := view.Load(ctx, 1)
	require.NoError(t, err)

	detail, err := view.ToggleWatchlist(ctx)

	assert.ErrorIs(t, err, service.ErrWatchlistOperationFailed)
	assert.False(t, detail.InWatchlist)
	assert.Equal(t, watchlistFailNotice, detail.Notice)
	assert.Len(t, detail.Points, 3)
}

func TestToggleWatchlist_NotLoaded(t *testing.T) {
	view := newView(new(MockStockApi), new(MockPriceResolver))

	_, err := view.ToggleWatchlist(context.Background())

	assert.ErrorIs(t, err, service.ErrStockNotLoaded)
}

func TestGenerateMockData_ResolvesAgain(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("CheckInWatchlist", ctx, int64(1)).Return(false, nil)
	api.On("GenerateMockData", ctx, int64(1), 365).Return("Generated 365 days of mock data for AAPL", nil)
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(nil, service.ErrProviderQuotaExceeded).Once()
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(series(1, 365), nil).Once()

	view := newView(api, resolver)
	detail, err := view.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, quotaBanner, detail.PriceError)
	assert.True(t, detail.CanGenerateMockData)

	detail, err = view.GenerateMockData(ctx)
	require.NoError(t, err)
	assert.Empty(t, detail.PriceError)
	assert.False(t, detail.CanGenerateMockData)
	assert.Len(t, detail.Points, 365)
	assert.Equal(t, "Generated 365 days of mock data for AAPL", detail.Notice)

	resolver.AssertNumberOfCalls(t, "Resolve", 2)
}

func TestGenerateMockData_Failure(t *testing.T) {
	ctx := context.Background()
	api := new(MockStockApi)
	resolver := new(MockPriceResolver)

	api.On("GetStock", ctx, int64(1)).Return(apple, nil)
	api.On("CheckInWatchlist", ctx, int64(1)).Return(false, nil)
	api.On("GenerateMockData", ctx, int64(1), 365).Return("", fmt.Errorf("%w: 500", externalApi.ErrBadStatus))
	resolver.On("Resolve", ctx, int64(1), "AAPL").Return(nil, service.ErrNetworkFailure).Once()

	view := newView(api, resolver)
	_, err := view.Load(ctx, 1)
	require.NoError(t, err)

	detail, err := view.GenerateMockData(ctx)

	assert.ErrorIs(t, err, service.ErrMockDataGenerationFailed)
	assert.Equal(t, networkBanner, detail.PriceError)
	assert.Equal(t, mockDataFailNotice, detail.Notice)
	resolver.AssertNumberOfCalls(t, "Resolve", 1)
}

func TestPriceErrorBanner(t *testing.T) {
	assert.Empty(t, PriceErrorBanner(nil))
	assert.Equal(t, quotaBanner, PriceErrorBanner(service.ErrProviderQuotaExceeded))
	assert.Equal(t, malformedBanner, PriceErrorBanner(fmt.Errorf("%w: bad", service.ErrMalformedResponse)))
	assert.Equal(t, networkBanner, PriceErrorBanner(fmt.Errorf("%w: timeout", service.ErrNetworkFailure)))
	assert.Equal(t, unknownBanner, PriceErrorBanner(errors.New("other")))
}
