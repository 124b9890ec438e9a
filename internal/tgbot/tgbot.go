package tgbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/stock_watchlist_bot/config"
	"github.com/KotFed0t/stock_watchlist_bot/data/session"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model/tg/tgCallback"
	"github.com/KotFed0t/stock_watchlist_bot/internal/transport/telegram"
	customMW "github.com/KotFed0t/stock_watchlist_bot/internal/transport/telegram/middleware"
	"github.com/KotFed0t/stock_watchlist_bot/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type TGBot struct {
	bot     *tele.Bot
	ctrl    *telegram.Controller
	session Session
}

func New(cfg *config.Config, ctrl *telegram.Controller, session Session) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
		OnError: func(err error, c tele.Context) {
			rqID, _ := c.Get("rqID").(string)
			slog.Error("telegram handler error", slog.String("rqID", rqID), slog.String("err", err.Error()))
		},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		// the session decides what the text means
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)
		chatSession, err := b.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send("something went wrong, try again later")
		}

		c.Set("session", chatSession)

		return b.ctrl.ProcessText(c)
	})

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/stocks", b.ctrl.Stocks)
	b.bot.Handle("/search", b.ctrl.Search)
	b.bot.Handle("/watchlist", b.ctrl.Watchlist)
	b.bot.Handle("/stock", b.ctrl.Stock)

	b.bot.Handle(&tele.Btn{Unique: tgCallback.OpenStock}, b.ctrl.OpenStock)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.SelectWindow}, b.ctrl.SelectWindow)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ToggleWatchlist}, b.ctrl.ToggleWatchlist)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.GenerateMockData}, b.ctrl.GenerateMockData)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ExportPrices}, b.ctrl.ExportPrices)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.OpenWatchlist}, b.ctrl.OpenWatchlist)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.RemoveFromWatchlist}, b.ctrl.RemoveFromWatchlist)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.BackHome}, b.ctrl.BackHome)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.StocksPage}, b.ctrl.StocksPage)
}
