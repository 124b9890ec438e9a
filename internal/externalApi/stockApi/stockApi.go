package stockApi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/KotFed0t/stock_watchlist_bot/config"
	"github.com/KotFed0t/stock_watchlist_bot/internal/converter/apiConverter"
	"github.com/KotFed0t/stock_watchlist_bot/internal/externalApi"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model"
	"github.com/KotFed0t/stock_watchlist_bot/internal/model/stockApiModel"
	"github.com/KotFed0t/stock_watchlist_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type StockApi struct {
	client             *resty.Client
	alphaVantageApiKey string
}

func New(cfg *config.Config) *StockApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.StockApi.Url).
		SetHeader("Content-Type", "application/json")
	return &StockApi{client: client, alphaVantageApiKey: cfg.API.AlphaVantage.ApiKey}
}

func (a *StockApi) GetStocks(ctx context.Context) ([]model.Stock, error) {
	op := "StockApi.GetStocks"

	body, err := a.execute(ctx, op, a.client.R(), resty.MethodGet, "/stocks")
	if err != nil {
		return nil, err
	}

	var stocks []stockApiModel.Stock
	if err = a.unmarshal(ctx, op, body, &stocks); err != nil {
		return nil, err
	}

	return apiConverter.ConvertStocks(stocks), nil
}

func (a *StockApi) SearchStocks(ctx context.Context, query string) ([]model.Stock, error) {
	op := "StockApi.SearchStocks"

	req := a.client.R().SetQueryParam("query", query)
	body, err := a.execute(ctx, op, req, resty.MethodGet, "/stocks/search")
	if err != nil {
		return nil, err
	}

	var stocks []stockApiModel.Stock
	if err = a.unmarshal(ctx, op, body, &stocks); err != nil {
		return nil, err
	}

	return apiConverter.ConvertStocks(stocks), nil
}

func (a *StockApi) GetStock(ctx context.Context, stockID int64) (model.Stock, error) {
	op := "StockApi.GetStock"

	req := a.client.R().SetPathParam("id", strconv.FormatInt(stockID, 10))
	body, err := a.execute(ctx, op, req, resty.MethodGet, "/stocks/{id}")
	if err != nil {
		return model.Stock{}, err
	}

	stock := stockApiModel.Stock{}
	if err = a.unmarshal(ctx, op, body, &stock); err != nil {
		return model.Stock{}, err
	}

	return apiConverter.ConvertStock(stock), nil
}

// GetStockPrices returns the generated price history kept by the backend, newest first.
func (a *StockApi) GetStockPrices(ctx context.Context, stockID int64) ([]model.PricePoint, error) {
	op := "StockApi.GetStockPrices"

	req := a.client.R().SetPathParam("stockId", strconv.FormatInt(stockID, 10))
	return a.getPricePoints(ctx, op, req, "/stock-prices/{stockId}")
}

// GetAlphaVantagePrices returns daily prices of symbol fetched by the backend from Alpha Vantage.
func (a *StockApi) GetAlphaVantagePrices(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	op := "StockApi.GetAlphaVantagePrices"

	req := a.client.R().
		SetPathParam("symbol", symbol).
		SetQueryParam("apiKey", a.alphaVantageApiKey)
	return a.getPricePoints(ctx, op, req, "/stock-prices/alphavantage/{symbol}")
}

func (a *StockApi) GenerateMockData(ctx context.Context, stockID int64, days int) (string, error) {
	op := "StockApi.GenerateMockData"

	req := a.client.R().
		SetPathParam("stockId", strconv.FormatInt(stockID, 10)).
		SetQueryParam("days", strconv.Itoa(days))
	body, err := a.execute(ctx, op, req, resty.MethodPost, "/stock-prices/{stockId}/generate-mock-data")
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (a *StockApi) GetWatchlist(ctx context.Context) ([]model.WatchlistItem, error) {
	op := "StockApi.GetWatchlist"

	body, err := a.execute(ctx, op, a.client.R(), resty.MethodGet, "/watchlist")
	if err != nil {
		return nil, err
	}

	var items []stockApiModel.WatchlistItem
	if err = a.unmarshal(ctx, op, body, &items); err != nil {
		return nil, err
	}

	return apiConverter.ConvertWatchlist(items), nil
}

func (a *StockApi) AddToWatchlist(ctx context.Context, stockID int64) (model.WatchlistItem, error) {
	op := "StockApi.AddToWatchlist"

	req := a.client.R().SetBody(stockApiModel.AddToWatchlistRequest{StockID: stockID})
	body, err := a.execute(ctx, op, req, resty.MethodPost, "/watchlist")
	if err != nil {
		return model.WatchlistItem{}, err
	}

	item := stockApiModel.WatchlistItem{}
	if err = a.unmarshal(ctx, op, body, &item); err != nil {
		return model.WatchlistItem{}, err
	}

	return apiConverter.ConvertWatchlistItem(item), nil
}

func (a *StockApi) RemoveFromWatchlist(ctx context.Context, stockID int64) error {
	op := "StockApi.RemoveFromWatchlist"

	req := a.client.R().SetPathParam("stockId", strconv.FormatInt(stockID, 10))
	_, err := a.execute(ctx, op, req, resty.MethodDelete, "/watchlist/{stockId}")
	return err
}

func (a *StockApi) CheckInWatchlist(ctx context.Context, stockID int64) (bool, error) {
	op := "StockApi.CheckInWatchlist"

	req := a.client.R().SetPathParam("stockId", strconv.FormatInt(stockID, 10))
	body, err := a.execute(ctx, op, req, resty.MethodGet, "/watchlist/check/{stockId}")
	if err != nil {
		return false, err
	}

	res := stockApiModel.CheckWatchlistResponse{}
	if err = a.unmarshal(ctx, op, body, &res); err != nil {
		return false, err
	}

	return res.InWatchlist, nil
}

func (a *StockApi) execute(ctx context.Context, op string, req *resty.Request, method, url string) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start StockApi request", slog.String("rqID", rqID), slog.String("op", op), slog.String("method", method), slog.String("url", url))

	resp, err := req.
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Execute(method, url)

	if err != nil {
		slog.Error("error while dialing StockApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w: %s", op, externalApi.ErrNetwork, err.Error())
	}

	if resp.StatusCode() == http.StatusNotFound {
		slog.Warn("StockApi returned not found", slog.String("rqID", rqID), slog.String("op", op))
		return nil, fmt.Errorf("%s: %w", op, externalApi.ErrNotFound)
	}

	if resp.IsError() {
		slog.Error(
			"StockApi returned error status",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode()),
			slog.String("body", resp.String()),
		)
		return nil, fmt.Errorf("%s: %w: %d", op, externalApi.ErrBadStatus, resp.StatusCode())
	}

	slog.Debug("StockApi request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Duration("duration", resp.Time()))

	return resp.Body(), nil
}

func (a *StockApi) unmarshal(ctx context.Context, op string, body []byte, dst any) error {
	err := json.Unmarshal(body, dst)
	if err != nil {
		slog.Error(
			"can't unmarshall StockApi response",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w: %s", op, externalApi.ErrBadResponse, err.Error())
	}
	return nil
}

func (a *StockApi) getPricePoints(ctx context.Context, op string, req *resty.Request, url string) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	body, err := a.execute(ctx, op, req, resty.MethodGet, url)
	if err != nil {
		return nil, err
	}

	rawPoints := stockApiModel.RawPricePoints{}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err = decoder.Decode(&rawPoints); err != nil {
		slog.Error("can't unmarshall response into stockApiModel.RawPricePoints", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w: %s", op, externalApi.ErrBadResponse, err.Error())
	}

	res, err := parseRawPricePoints(rawPoints)
	if err != nil {
		slog.Error("can't parse raw price points", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w: %s", op, externalApi.ErrBadResponse, err.Error())
	}

	slog.Debug("got price points", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(res)))

	return res, nil
}

var priceColumns = []string{"id", "stockId", "symbol", "date", "openPrice", "closePrice", "highPrice", "lowPrice", "volume"}

var optionalPriceColumns = map[string]bool{
	"id":      true,
	"stockId": true,
	"symbol":  true,
}

func parseRawPricePoints(rawPoints stockApiModel.RawPricePoints) ([]model.PricePoint, error) {
	res := make([]model.PricePoint, 0, len(rawPoints))

	for i, rawPoint := range rawPoints {
		if rawPoint == nil {
			return nil, fmt.Errorf("point %d is null", i)
		}

		point := model.PricePoint{}

		for _, column := range priceColumns {
			value, ok := rawPoint[column]
			if !ok || value == nil {
				if optionalPriceColumns[column] {
					continue
				}
				return nil, fmt.Errorf("point %d: missing %s", i, column)
			}

			var err error
			switch column {
			case "id":
				point.ID, err = parseInt(value)
			case "stockId":
				point.StockID, err = parseInt(value)
			case "symbol":
				var symbol string
				symbol, ok = value.(string)
				if !ok {
					err = fmt.Errorf("expected string, got %T", value)
				}
				point.Symbol = symbol
			case "date":
				point.Date, err = parseDate(value)
			case "openPrice":
				point.OpenPrice, err = parseDecimal(value)
			case "closePrice":
				point.ClosePrice, err = parseDecimal(value)
			case "highPrice":
				point.HighPrice, err = parseDecimal(value)
			case "lowPrice":
				point.LowPrice, err = parseDecimal(value)
			case "volume":
				point.Volume, err = parseInt(value)
			}

			if err != nil {
				return nil, fmt.Errorf("point %d: invalid %s = %v: %w", i, column, value, err)
			}
		}

		res = append(res, point)
	}

	return res, nil
}

func parseDecimal(value any) (decimal.Decimal, error) {
	number, ok := value.(json.Number)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("expected number, got %T", value)
	}
	return decimal.NewFromString(number.String())
}

func parseInt(value any) (int64, error) {
	d, err := parseDecimal(value)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, errors.New("expected integer")
	}
	return d.IntPart(), nil
}

func parseDate(value any) (time.Time, error) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("expected string, got %T", value)
	}
	return time.Parse(time.DateOnly, s)
}
