package exportService

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/KotFed0t/stock_watchlist_bot/config"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/service"
	"github.com/KotFed0t/stock_watchlist_bot/utils"
)

type ReportGenerator interface {
	Generate(ctx context.Context, detail model.StockDetail) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type ExportService struct {
	generator        ReportGenerator
	storage          CloudStorage
	fileLimitInBytes int
}

func New(cfg *config.Config, generator ReportGenerator, storage CloudStorage) *ExportService {
	return &ExportService{
		generator:        generator,
		storage:          storage,
		fileLimitInBytes: cfg.Telegram.FileLimitInBytes,
	}
}

// ExportPrices renders the displayed series of detail. Files above the Telegram
// limit are uploaded to the cloud storage and only the link is returned.
func (s *ExportService) ExportPrices(ctx context.Context, detail model.StockDetail) (model.ExportFile, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExportService.ExportPrices"

	if !detail.Loaded() {
		return model.ExportFile{}, service.ErrStockNotLoaded
	}

	slog.Debug("ExportPrices start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("stockID", detail.StockID))

	fileBytes, ext, err := s.generator.Generate(ctx, detail)
	if err != nil {
		slog.Error("got error from generator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ExportFile{}, fmt.Errorf("%w: %s", service.ErrExportFailed, err.Error())
	}

	file := model.ExportFile{Name: fileName(detail, ext)}

	if s.fileLimitInBytes <= 0 || len(fileBytes) <= s.fileLimitInBytes {
		file.Content = fileBytes
		return file, nil
	}

	slog.Info("export exceeds telegram file limit, uploading to cloud", slog.String("rqID", rqID), slog.String("op", op), slog.Int("size", len(fileBytes)))

	link, err := s.storage.UploadFile(ctx, bytes.NewReader(fileBytes), file.Name)
	if err != nil {
		slog.Error("got error from storage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ExportFile{}, fmt.Errorf("%w: %s", service.ErrExportFailed, err.Error())
	}

	file.DownloadLink = link
	return file, nil
}

func fileName(detail model.StockDetail, ext string) string {
	name := fmt.Sprintf("%s_%s", detail.Stock.Symbol, detail.Window)
	if detail.Stats != nil {
		name += "_" + detail.Stats.Latest.Date.Format("20060102")
	}
	return name + ext
}
