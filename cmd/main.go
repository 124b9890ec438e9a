package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/stock_watchlist_bot/config"
	"github.com/KotFed0t/stock_watchlist_bot/data"
	"github.com/KotFed0t/stock_watchlist_bot/data/session"
	"github.com/KotFed0t/stock_watchlist_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/stock_watchlist_bot/internal/externalApi/cloudStorageApi/noopStorage"
	"github.com/KotFed0t/stock_watchlist_bot/internal/externalApi/stockApi"
	"github.com/KotFed0t/stock_watchlist_bot/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/stock_watchlist_bot/internal/scheduler"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service/detailView"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service/exportService"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service/priceResolver"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service/stockService"
	"github.com/KotFed0t/stock_watchlist_bot/internal/tgbot"
	"github.com/KotFed0t/stock_watchlist_bot/internal/transport/telegram"
)

type cloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config loaded", slog.String("logLevel", cfg.LogLevel), slog.String("stockApiUrl", cfg.API.StockApi.Url))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := data.NewRedisClient(ctx, cfg)
	defer redisClient.Close()

	redisSession := session.NewRedisSession(redisClient, cfg)

	stockApiClient := stockApi.New(cfg)

	resolver := priceResolver.New(stockApiClient, stockApiClient)
	views := detailView.NewRegistry(cfg, stockApiClient, resolver)
	stockSrv := stockService.New(cfg, stockApiClient)

	storage := newCloudStorage(ctx, cfg)
	exportSrv := exportService.New(cfg, xslsxGenerator.New(), storage)

	sched := scheduler.New(cfg.Jobs.Timeout)
	sched.NewIntervalJob("sweep idle detail views", views.SweepIdle, cfg.Jobs.SweepViewsInterval, false)
	sched.NewCrontabJob("delete old exports", storage.DeleteOldFiles, cfg.Jobs.DeleteOldFilesCrontab, false)
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(stockSrv, exportSrv, views, redisSession)

	tgBot := tgbot.New(cfg, tgController, redisSession)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func newCloudStorage(ctx context.Context, cfg *config.Config) cloudStorage {
	if cfg.GoogleDrive.CredentialsFile == "" {
		slog.Warn("google drive credentials are not set, oversized exports are disabled")
		return noopStorage.New()
	}
	return googleDriveApi.New(ctx, cfg)
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
