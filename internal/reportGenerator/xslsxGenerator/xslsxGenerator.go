package xslsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/KotFed0t/stock_watchlist_bot/internal/calculator"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/utils"
	"github.com/xuri/excelize/v2"
)

const (
	pricesSheet = "Prices"
	statsSheet  = "Statistics"
	dateFormat  = "2006-01-02"

	headerRow    = 2
	firstDataRow = 3
)

var ErrNothingToExport = errors.New("error no price points to export")

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

// Generate renders the displayed series of the detail view: a price table with a
// close price line chart and a sheet with the period statistics.
func (g *XSLSXGenerator) Generate(ctx context.Context, detail model.StockDetail) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if !detail.Loaded() || len(detail.Points) == 0 {
		return nil, "", ErrNothingToExport
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("stockID", detail.StockID))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = f.SetSheetName("Sheet1", pricesSheet); err != nil {
		return nil, "", err
	}

	if err = g.fillPrices(f, detail); err != nil {
		slog.Error("got error while filling prices sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillStats(f, detail); err != nil {
		slog.Error("got error while filling statistics sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("size", buf.Len()))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillPrices(f *excelize.File, detail model.StockDetail) error {
	if err := f.MergeCell(pricesSheet, "A1", "F1"); err != nil {
		return err
	}
	title := fmt.Sprintf("%s (%s), %s", detail.Stock.Name, detail.Stock.Symbol, detail.Window.Label())
	_ = f.SetCellStr(pricesSheet, "A1", title)

	styleID, err := headerStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}
	if err = f.SetCellStyle(pricesSheet, "A1", "F1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	headers := []string{"date", "open", "high", "low", "close", "volume"}
	if err = f.SetSheetRow(pricesSheet, fmt.Sprintf("A%d", headerRow), &headers); err != nil {
		return err
	}

	// oldest first so the chart reads left to right
	points := slices.Clone(detail.Points)
	slices.SortFunc(points, func(a, b model.PricePoint) int {
		return a.Date.Compare(b.Date)
	})

	for i, p := range points {
		row := firstDataRow + i
		_ = f.SetCellStr(pricesSheet, fmt.Sprintf("A%d", row), p.Date.Format(dateFormat))
		_ = f.SetCellValue(pricesSheet, fmt.Sprintf("B%d", row), p.OpenPrice.InexactFloat64())
		_ = f.SetCellValue(pricesSheet, fmt.Sprintf("C%d", row), p.HighPrice.InexactFloat64())
		_ = f.SetCellValue(pricesSheet, fmt.Sprintf("D%d", row), p.LowPrice.InexactFloat64())
		_ = f.SetCellValue(pricesSheet, fmt.Sprintf("E%d", row), p.ClosePrice.InexactFloat64())
		_ = f.SetCellInt(pricesSheet, fmt.Sprintf("F%d", row), p.Volume)
	}

	lastRow := firstDataRow + len(points) - 1

	return f.AddChart(pricesSheet, "H2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$E$%d", pricesSheet, headerRow),
				Categories: fmt.Sprintf("%s!$A$%d:$A$%d", pricesSheet, firstDataRow, lastRow),
				Values:     fmt.Sprintf("%s!$E$%d:$E$%d", pricesSheet, firstDataRow, lastRow),
			},
		},
		Title:  []excelize.RichTextRun{{Text: detail.Stock.Symbol + " close price"}},
		Legend: excelize.ChartLegend{Position: "top"},
		Dimension: excelize.ChartDimension{
			Width:  720,
			Height: 360,
		},
	})
}

func (g *XSLSXGenerator) fillStats(f *excelize.File, detail model.StockDetail) error {
	if _, err := f.NewSheet(statsSheet); err != nil {
		return err
	}

	styleID, err := headerStyle(f, "#d9ead3")
	if err != nil {
		return err
	}

	_ = f.SetCellStr(statsSheet, "A1", "statistic")
	_ = f.SetCellStr(statsSheet, "B1", "value")
	if err = f.SetCellStyle(statsSheet, "A1", "B1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	for i, row := range statsRows(detail) {
		_ = f.SetCellStr(statsSheet, fmt.Sprintf("A%d", i+2), row[0])
		_ = f.SetCellStr(statsSheet, fmt.Sprintf("B%d", i+2), row[1])
	}

	return f.SetColWidth(statsSheet, "A", "B", 24)
}

func statsRows(detail model.StockDetail) [][2]string {
	s := detail.Stats
	if s == nil {
		return nil
	}

	rows := [][2]string{
		{"symbol", detail.Stock.Symbol},
		{"window", detail.Window.Label()},
		{"points", fmt.Sprintf("%d of %d", s.Count, detail.FullSeriesCount)},
		{"period", fmt.Sprintf("%s - %s", s.Oldest.Date.Format(dateFormat), s.Latest.Date.Format(dateFormat))},
		{"latest close", calculator.FormatMoney(s.Latest.ClosePrice)},
	}
	if s.HasChange {
		rows = append(rows, [2]string{"day change", calculator.FormatChange(s.Change, s.ChangePercent, s.HasChangePct)})
	}
	rows = append(rows,
		[2]string{"high", fmt.Sprintf("%s (%s)", calculator.FormatMoney(s.High), s.HighDate.Format(dateFormat))},
		[2]string{"low", fmt.Sprintf("%s (%s)", calculator.FormatMoney(s.Low), s.LowDate.Format(dateFormat))},
	)
	if s.HasPeriodChange {
		rows = append(rows, [2]string{"period change", calculator.FormatChange(s.PeriodChange, s.PeriodChangePercent, s.HasPeriodChangePct)})
	}
	rows = append(rows, [2]string{"average volume", calculator.FormatVolume(s.AverageVolume)})

	return rows
}

func headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}
