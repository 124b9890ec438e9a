package telegram

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/stock_watchlist_bot/data/session"
	"github.com/KotFed0t/stock_watchlist_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service/detailView"
	"github.com/KotFed0t/stock_watchlist_bot/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg       = "something went wrong, try again later"
	networkErrMsg        = "the stock service is unreachable, try again later"
	badStockIDMsg        = "usage: /stock <id>"
	searchPromptMsg      = "Enter a symbol or a company name:"
	unexpectedTextMsg    = "send one of the commands first, /start shows them"
	exportUnavailableMsg = "nothing to export yet"
)

type StockService interface {
	SearchStocks(ctx context.Context, query string, page int) (model.StockList, error)
	GetWatchlist(ctx context.Context) (model.Watchlist, error)
	RemoveFromWatchlist(ctx context.Context, stockID int64) (model.Watchlist, error)
}

type ExportService interface {
	ExportPrices(ctx context.Context, detail model.StockDetail) (model.ExportFile, error)
}

type Views interface {
	Get(chatID int64) *detailView.View
	Lookup(chatID int64) (*detailView.View, bool)
	Drop(chatID int64)
}

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type Controller struct {
	stockService  StockService
	exportService ExportService
	views         Views
	session       Session
}

func NewController(stockService StockService, exportService ExportService, views Views, session Session) *Controller {
	return &Controller{
		stockService:  stockService,
		exportService: exportService,
		views:         views,
		session:       session,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	ctrl.views.Drop(c.Chat().ID)
	ctrl.saveSession(ctx, c, model.Session{Page: model.HomePage})

	text, markup := telebotConverter.HomeResponse()
	return ctrl.render(c, text, markup, "")
}

func (ctrl *Controller) Stocks(c tele.Context) error {
	return ctrl.showStocks(c, "", 0)
}

// StocksPage handles the pagination buttons of the catalog and of search results.
func (ctrl *Controller) StocksPage(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	page, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		page = 0
	}

	chatSession, _ := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	query := ""
	if chatSession.Page == model.SearchPage {
		query = chatSession.Query
	}

	return ctrl.showStocks(c, query, page)
}

// Search runs "/search <query>" or asks for the query when it is missing.
func (ctrl *Controller) Search(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	query := strings.TrimSpace(c.Message().Payload)
	if query != "" {
		return ctrl.showStocks(c, query, 0)
	}

	chatSession, _ := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	chatSession.State = model.ExpectingSearchQuery
	ctrl.saveSession(ctx, c, chatSession)

	return c.Send(searchPromptMsg)
}

// ProcessText handles plain text messages depending on the session state.
func (ctrl *Controller) ProcessText(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return c.Send(internalErrMsg)
	}

	switch chatSession.State {
	case model.ExpectingSearchQuery:
		return ctrl.showStocks(c, c.Message().Text, 0)
	default:
		slog.Debug("unexpected text", slog.String("rqID", rqID), slog.Any("state", chatSession.State))
		return c.Send(unexpectedTextMsg)
	}
}

func (ctrl *Controller) showStocks(c tele.Context, query string, page int) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	list, err := ctrl.stockService.SearchStocks(ctx, query, page)
	if err != nil {
		slog.Error("got error from stockService.SearchStocks", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return ctrl.respondErr(c, networkErrMsg)
	}

	chatSession := model.Session{Page: model.StockListPage}
	if list.Query != "" {
		chatSession.Page = model.SearchPage
		chatSession.Query = list.Query
	}
	ctrl.views.Drop(c.Chat().ID)
	ctrl.saveSession(ctx, c, chatSession)

	text, markup := telebotConverter.StockListResponse(list)
	return ctrl.render(c, text, markup, "")
}

func (ctrl *Controller) Watchlist(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	watchlist, err := ctrl.stockService.GetWatchlist(ctx)
	if err != nil {
		slog.Error("got error from stockService.GetWatchlist", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return ctrl.respondErr(c, networkErrMsg)
	}

	ctrl.views.Drop(c.Chat().ID)
	ctrl.saveSession(ctx, c, model.Session{Page: model.WatchlistPage})

	text, markup := telebotConverter.WatchlistResponse(watchlist)
	return ctrl.render(c, text, markup, "")
}

func (ctrl *Controller) RemoveFromWatchlist(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	stockID, err := strconv.ParseInt(c.Callback().Data, 10, 64)
	if err != nil {
		return ctrl.respondErr(c, internalErrMsg)
	}

	watchlist, err := ctrl.stockService.RemoveFromWatchlist(ctx, stockID)
	if err != nil {
		slog.Error("got error from stockService.RemoveFromWatchlist", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return ctrl.respondErr(c, "failed to update watchlist, try again later")
	}

	text, markup := telebotConverter.WatchlistResponse(watchlist)
	return ctrl.render(c, text, markup, "Removed from watchlist")
}

// Stock opens "/stock <id>".
func (ctrl *Controller) Stock(c tele.Context) error {
	stockID, err := strconv.ParseInt(strings.TrimSpace(c.Message().Payload), 10, 64)
	if err != nil {
		return c.Send(badStockIDMsg)
	}
	return ctrl.openStock(c, stockID)
}

func (ctrl *Controller) OpenStock(c tele.Context) error {
	stockID, err := strconv.ParseInt(c.Callback().Data, 10, 64)
	if err != nil {
		return ctrl.respondErr(c, internalErrMsg)
	}
	return ctrl.openStock(c, stockID)
}

func (ctrl *Controller) openStock(c tele.Context, stockID int64) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	detail, err := ctrl.views.Get(c.Chat().ID).Load(ctx, stockID)
	if err != nil {
		if errors.Is(err, service.ErrStaleResponse) {
			slog.Debug("stock load superseded", slog.String("rqID", rqID), slog.Int64("stockID", stockID))
			return nil
		}
		slog.Warn("stock load failed", slog.String("rqID", rqID), slog.Int64("stockID", stockID), slog.String("err", err.Error()))
	}

	return ctrl.renderDetail(ctx, c, detail)
}

func (ctrl *Controller) SelectWindow(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	window, err := model.ParseTimeWindow(c.Callback().Data)
	if err != nil {
		return ctrl.respondErr(c, internalErrMsg)
	}

	view, err := ctrl.currentView(ctx, c)
	if err != nil {
		return ctrl.respondErr(c, internalErrMsg)
	}

	return ctrl.renderDetail(ctx, c, view.SelectWindow(window))
}

func (ctrl *Controller) ToggleWatchlist(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	view, err := ctrl.currentView(ctx, c)
	if err != nil {
		return ctrl.respondErr(c, internalErrMsg)
	}

	detail, err := view.ToggleWatchlist(ctx)
	if err != nil {
		if errors.Is(err, service.ErrStaleResponse) {
			return nil
		}
		slog.Error("got error from view.ToggleWatchlist", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	return ctrl.renderDetail(ctx, c, detail)
}

func (ctrl *Controller) GenerateMockData(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	view, err := ctrl.currentView(ctx, c)
	if err != nil {
		return ctrl.respondErr(c, internalErrMsg)
	}

	detail, err := view.GenerateMockData(ctx)
	if err != nil {
		if errors.Is(err, service.ErrStaleResponse) {
			return nil
		}
		slog.Error("got error from view.GenerateMockData", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	return ctrl.renderDetail(ctx, c, detail)
}

func (ctrl *Controller) ExportPrices(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	view, err := ctrl.currentView(ctx, c)
	if err != nil {
		return ctrl.respondErr(c, internalErrMsg)
	}

	detail := view.Peek()
	if len(detail.Points) == 0 {
		return ctrl.respondErr(c, exportUnavailableMsg)
	}

	file, err := ctrl.exportService.ExportPrices(ctx, detail)
	if err != nil {
		slog.Error("got error from exportService.ExportPrices", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return ctrl.respondErr(c, internalErrMsg)
	}

	if c.Callback() != nil {
		_ = c.Respond()
	}

	if file.DownloadLink != "" {
		return c.Send(telebotConverter.ExportCaption(file))
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(file.Content)),
		FileName: file.Name,
		Caption:  telebotConverter.ExportCaption(file),
	}
	return c.Send(doc)
}

func (ctrl *Controller) OpenWatchlist(c tele.Context) error {
	return ctrl.Watchlist(c)
}

func (ctrl *Controller) BackHome(c tele.Context) error {
	return ctrl.Start(c)
}

// currentView returns the detail view of the chat. A view lost on restart is
// restored from the session.
func (ctrl *Controller) currentView(ctx context.Context, c tele.Context) (*detailView.View, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if view, ok := ctrl.views.Lookup(c.Chat().ID); ok && view.Loaded() {
		return view, nil
	}

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return nil, err
	}
	if chatSession.Page != model.StockDetailPage || chatSession.StockID == 0 {
		slog.Warn("no stock to restore the detail view", slog.String("rqID", rqID), slog.Any("page", chatSession.Page))
		return nil, service.ErrStockNotLoaded
	}

	view := ctrl.views.Get(c.Chat().ID)
	if chatSession.Window != "" {
		view.SelectWindow(chatSession.Window)
	}
	if _, err = view.Load(ctx, chatSession.StockID); err != nil {
		return nil, err
	}

	return view, nil
}

func (ctrl *Controller) renderDetail(ctx context.Context, c tele.Context, detail model.StockDetail) error {
	if detail.Loaded() {
		ctrl.saveSession(ctx, c, model.Session{
			Page:    model.StockDetailPage,
			StockID: detail.StockID,
			Window:  detail.Window,
		})
	}

	text, markup := telebotConverter.StockDetailResponse(detail)
	return ctrl.render(c, text, markup, detail.Notice)
}

// render edits the message of a pressed button or sends a new one.
// notice is shown as a transient popup when a button was pressed.
func (ctrl *Controller) render(c tele.Context, text string, markup *tele.ReplyMarkup, notice string) error {
	if c.Callback() == nil {
		return c.Send(text, markup)
	}

	_ = c.Respond(&tele.CallbackResponse{Text: notice})
	err := c.Edit(text, markup)
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	return err
}

func (ctrl *Controller) respondErr(c tele.Context, msg string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msg, ShowAlert: true})
	}
	return c.Send(msg)
}

func (ctrl *Controller) getSessionFromTeleCtxOrStorage(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, ok := c.Get("session").(model.Session)
	if ok {
		return chatSession, nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		}
		return model.Session{}, err
	}
	return chatSession, nil
}

func (ctrl *Controller) saveSession(ctx context.Context, c tele.Context, chatSession model.Session) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	c.Set("session", chatSession)
	err := ctrl.session.SetSession(ctx, strconv.FormatInt(c.Chat().ID, 10), chatSession)
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
}
