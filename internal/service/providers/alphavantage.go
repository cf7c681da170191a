package providers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
)

// AlphaVantage serves quotes, candles and search from the Alpha Vantage
// REST API. It is only registered when an API key is configured. The free
// tier throttles hard, so a "Note" payload is classified as rate limited.
type AlphaVantage struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
}

// NewAlphaVantage creates the Alpha Vantage provider.
func NewAlphaVantage(client *xhttp.Client, baseURL, apiKey string) *AlphaVantage {
	return &AlphaVantage{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (a *AlphaVantage) Name() string  { return "alphavantage" }
func (a *AlphaVantage) Priority() int { return 15 }

func (a *AlphaVantage) Supports(c drepo.Capability) bool {
	switch c {
	case drepo.CapQuote, drepo.CapCandles, drepo.CapSearch:
		return true
	}
	return false
}

// avEnvelope carries the throttle/error fields present on every function.
type avEnvelope struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (e avEnvelope) check() *models.ProviderError {
	if e.Note != "" || e.Information != "" {
		return models.NewProviderError("alphavantage", models.FailRateLimited, fmt.Errorf("throttled"))
	}
	if e.ErrorMessage != "" {
		return models.NewProviderError("alphavantage", models.FailNotFound, fmt.Errorf("%s", e.ErrorMessage))
	}
	return nil
}

func (a *AlphaVantage) call(ctx context.Context, params map[string][]string, dest interface{}) error {
	params["apikey"] = []string{a.apiKey}
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         a.baseURL,
		QueryParams: params,
	}, dest)
	if err != nil {
		return classifyHTTPError("alphavantage", err)
	}
	return nil
}

type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type avDailyResponse struct {
	avEnvelope
	Series map[string]avBar `json:"Time Series (Daily)"`
}

type avIntradayResponse struct {
	avEnvelope
	Series1m  map[string]avBar `json:"Time Series (1min)"`
	Series5m  map[string]avBar `json:"Time Series (5min)"`
	Series15m map[string]avBar `json:"Time Series (15min)"`
	Series30m map[string]avBar `json:"Time Series (30min)"`
	Series60m map[string]avBar `json:"Time Series (60min)"`
}

func avInterval(iv drepo.Interval) string {
	switch iv {
	case drepo.Interval1m:
		return "1min"
	case drepo.Interval5m:
		return "5min"
	case drepo.Interval15m:
		return "15min"
	case drepo.Interval30m:
		return "30min"
	default:
		return "60min"
	}
}

// Candles fetches TIME_SERIES_DAILY or TIME_SERIES_INTRADAY and converts
// the keyed map into an ordered series filtered to the period.
func (a *AlphaVantage) Candles(ctx context.Context, symbol string, period drepo.Period, interval drepo.Interval) ([]models.Candle, error) {
	var series map[string]avBar
	var layout string

	if drepo.IsIntraday(interval) {
		var payload avIntradayResponse
		err := a.call(ctx, map[string][]string{
			"function":   {"TIME_SERIES_INTRADAY"},
			"symbol":     {symbol},
			"interval":   {avInterval(interval)},
			"outputsize": {"full"},
		}, &payload)
		if err != nil {
			return nil, err
		}
		if perr := payload.check(); perr != nil {
			return nil, perr
		}
		layout = "2006-01-02 15:04:05"
		switch interval {
		case drepo.Interval1m:
			series = payload.Series1m
		case drepo.Interval5m:
			series = payload.Series5m
		case drepo.Interval15m:
			series = payload.Series15m
		case drepo.Interval30m:
			series = payload.Series30m
		default:
			series = payload.Series60m
		}
	} else {
		var payload avDailyResponse
		err := a.call(ctx, map[string][]string{
			"function":   {"TIME_SERIES_DAILY"},
			"symbol":     {symbol},
			"outputsize": {"full"},
		}, &payload)
		if err != nil {
			return nil, err
		}
		if perr := payload.check(); perr != nil {
			return nil, perr
		}
		layout = "2006-01-02"
		series = payload.Series
	}

	if len(series) == 0 {
		return nil, models.NewProviderError("alphavantage", models.FailEmpty, nil)
	}

	start := drepo.PeriodStart(period, time.Now().UTC())
	candles := make([]models.Candle, 0, len(series))
	for key, bar := range series {
		ts, err := time.Parse(layout, key)
		if err != nil {
			continue
		}
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		c, err := bar.toCandle(ts.UTC())
		if err != nil {
			continue
		}
		candles = append(candles, c)
	}
	if len(candles) == 0 {
		return nil, models.NewProviderError("alphavantage", models.FailEmpty, nil)
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Timestamp.Before(candles[j].Timestamp) })
	candles = models.NormalizeSeries(candles)
	if err := models.ValidateSeries(candles); err != nil {
		return nil, models.NewProviderError("alphavantage", models.FailMalformed, err)
	}
	return candles, nil
}

func (b avBar) toCandle(ts time.Time) (models.Candle, error) {
	open, err1 := strconv.ParseFloat(b.Open, 64)
	high, err2 := strconv.ParseFloat(b.High, 64)
	low, err3 := strconv.ParseFloat(b.Low, 64)
	closep, err4 := strconv.ParseFloat(b.Close, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return models.Candle{}, fmt.Errorf("bad ohlc fields")
	}
	vol, _ := strconv.ParseFloat(b.Volume, 64)
	return models.Candle{Timestamp: ts, Open: open, High: high, Low: low, Close: closep, Volume: vol}, nil
}

type avQuoteResponse struct {
	avEnvelope
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
	} `json:"Global Quote"`
}

// Quote fetches GLOBAL_QUOTE. Alpha Vantage has no 52-week or market-cap
// fields here; the coordinator fills what it gets.
func (a *AlphaVantage) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var payload avQuoteResponse
	err := a.call(ctx, map[string][]string{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if perr := payload.check(); perr != nil {
		return nil, perr
	}
	gq := payload.GlobalQuote
	if gq.Symbol == "" {
		return nil, models.NewProviderError("alphavantage", models.FailNotFound, nil)
	}
	price, err := strconv.ParseFloat(gq.Price, 64)
	if err != nil || price == 0 {
		return nil, models.NewProviderError("alphavantage", models.FailEmpty, err)
	}
	open, _ := strconv.ParseFloat(gq.Open, 64)
	high, _ := strconv.ParseFloat(gq.High, 64)
	low, _ := strconv.ParseFloat(gq.Low, 64)
	prev, _ := strconv.ParseFloat(gq.PreviousClose, 64)
	vol, _ := strconv.ParseFloat(gq.Volume, 64)
	return &models.Quote{
		Symbol:        gq.Symbol,
		CurrentPrice:  price,
		PreviousClose: prev,
		Open:          open,
		DayHigh:       high,
		DayLow:        low,
		Volume:        vol,
	}, nil
}

type avSearchResponse struct {
	avEnvelope
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
		Type   string `json:"3. type"`
		Region string `json:"4. region"`
	} `json:"bestMatches"`
}

func (a *AlphaVantage) Search(ctx context.Context, query string, limit int) ([]models.Instrument, error) {
	var payload avSearchResponse
	err := a.call(ctx, map[string][]string{
		"function": {"SYMBOL_SEARCH"},
		"keywords": {query},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if perr := payload.check(); perr != nil {
		return nil, perr
	}
	out := make([]models.Instrument, 0, len(payload.BestMatches))
	for _, m := range payload.BestMatches {
		if m.Type != "" && m.Type != "Equity" {
			continue
		}
		out = append(out, models.Instrument{Symbol: m.Symbol, Name: m.Name, Exchange: m.Region})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, models.NewProviderError("alphavantage", models.FailEmpty, nil)
	}
	return out, nil
}
