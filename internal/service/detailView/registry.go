package detailView

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/stock_watchlist_bot/config"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
)

// Registry keeps one View per chat.
type Registry struct {
	stockApi      StockApi
	resolver      PriceResolver
	defaultWindow model.TimeWindow
	mockDataDays  int
	ttl           time.Duration
	now           func() time.Time

	mu    sync.Mutex
	views map[int64]*View
}

func NewRegistry(cfg *config.Config, stockApi StockApi, resolver PriceResolver) *Registry {
	window, err := model.ParseTimeWindow(cfg.Detail.DefaultWindow)
	if err != nil {
		slog.Warn("invalid default time window, using ALL", slog.String("window", cfg.Detail.DefaultWindow))
		window = model.WindowAll
	}

	return &Registry{
		stockApi:      stockApi,
		resolver:      resolver,
		defaultWindow: window,
		mockDataDays:  cfg.Detail.MockDataDays,
		ttl:           cfg.Detail.ViewTTL,
		now:           time.Now,
		views:         make(map[int64]*View),
	}
}

// Get returns the view of the chat, creating it on first use.
func (r *Registry) Get(chatID int64) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	view, ok := r.views[chatID]
	if !ok {
		view = New(r.stockApi, r.resolver, r.defaultWindow, r.mockDataDays)
		view.now = r.now
		view.lastUsed = r.now()
		r.views[chatID] = view
	}
	return view
}

func (r *Registry) Lookup(chatID int64) (*View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	view, ok := r.views[chatID]
	return view, ok
}

// Drop forgets the view of the chat, e.g. when the user leaves the detail page.
// Operations still running on the dropped view end with service.ErrStaleResponse.
func (r *Registry) Drop(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if view, ok := r.views[chatID]; ok {
		view.invalidate()
		delete(r.views, chatID)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.views)
}

// SweepIdle drops views unused for longer than the configured TTL.
func (r *Registry) SweepIdle(ctx context.Context) error {
	deadline := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	swept := 0
	for chatID, view := range r.views {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if view.IdleSince().Before(deadline) {
			view.invalidate()
			delete(r.views, chatID)
			swept++
		}
	}

	slog.Info("idle views swept", slog.Int("swept", swept), slog.Int("remaining", len(r.views)))

	return nil
}
