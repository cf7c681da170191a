package providers

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
	xutil "StockPulse/pkg/util"
)

// Finnhub is the last-resort keyed upstream. It serves quotes, candles
// and search from the Finnhub REST API and is only registered when an
// API key is configured.
type Finnhub struct {
	client  *xhttp.Client
	baseURL string
	apiKey  string
}

// NewFinnhub creates the Finnhub provider.
func NewFinnhub(client *xhttp.Client, baseURL, apiKey string) *Finnhub {
	return &Finnhub{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (f *Finnhub) Name() string  { return "finnhub" }
func (f *Finnhub) Priority() int { return 20 }

func (f *Finnhub) Supports(c drepo.Capability) bool {
	switch c {
	case drepo.CapQuote, drepo.CapCandles, drepo.CapSearch:
		return true
	}
	return false
}

func (f *Finnhub) call(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	params["token"] = []string{f.apiKey}
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         f.baseURL + path,
		QueryParams: params,
	}, dest)
	if err != nil {
		return classifyHTTPError("finnhub", err)
	}
	return nil
}

type fhQuote struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
}

// Quote fetches /quote. Finnhub answers 200 with all-zero fields for
// unknown symbols, which is treated as not found.
func (f *Finnhub) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var payload fhQuote
	if err := f.call(ctx, "/quote", map[string][]string{"symbol": {symbol}}, &payload); err != nil {
		return nil, err
	}
	if payload.Current == 0 && payload.PreviousClose == 0 {
		return nil, models.NewProviderError("finnhub", models.FailNotFound, nil)
	}
	return &models.Quote{
		Symbol:        symbol,
		CurrentPrice:  payload.Current,
		PreviousClose: payload.PreviousClose,
		Open:          payload.Open,
		DayHigh:       payload.High,
		DayLow:        payload.Low,
	}, nil
}

func fhResolution(iv drepo.Interval) string {
	switch iv {
	case drepo.Interval1m:
		return "1"
	case drepo.Interval5m:
		return "5"
	case drepo.Interval15m:
		return "15"
	case drepo.Interval30m:
		return "30"
	case drepo.Interval60m:
		return "60"
	case drepo.Interval1Wk:
		return "W"
	case drepo.Interval1Mo:
		return "M"
	default:
		return "D"
	}
}

type fhCandles struct {
	Status string    `json:"s"`
	T      []int64   `json:"t"`
	O      []float64 `json:"o"`
	H      []float64 `json:"h"`
	L      []float64 `json:"l"`
	C      []float64 `json:"c"`
	V      []float64 `json:"v"`
}

// Candles fetches /stock/candle over the period window.
func (f *Finnhub) Candles(ctx context.Context, symbol string, period drepo.Period, interval drepo.Interval) ([]models.Candle, error) {
	now := time.Now().UTC()
	from := drepo.PeriodStart(period, now)
	if from.IsZero() {
		from = now.AddDate(-20, 0, 0)
	}
	from, to := xutil.AlignFromTo(from, now, string(interval))

	var payload fhCandles
	err := f.call(ctx, "/stock/candle", map[string][]string{
		"symbol":     {symbol},
		"resolution": {fhResolution(interval)},
		"from":       {fmt.Sprintf("%d", from.Unix())},
		"to":         {fmt.Sprintf("%d", to.Unix())},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Status == "no_data" {
		return nil, models.NewProviderError("finnhub", models.FailEmpty, nil)
	}
	if payload.Status != "ok" {
		return nil, models.NewProviderError("finnhub", models.FailUpstream, fmt.Errorf("status %q", payload.Status))
	}

	n := len(payload.T)
	if n == 0 || len(payload.O) != n || len(payload.H) != n || len(payload.L) != n || len(payload.C) != n {
		return nil, models.NewProviderError("finnhub", models.FailMalformed, fmt.Errorf("ragged arrays"))
	}
	candles := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		var vol float64
		if i < len(payload.V) {
			vol = payload.V[i]
		}
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(payload.T[i], 0).UTC(),
			Open:      payload.O[i],
			High:      payload.H[i],
			Low:       payload.L[i],
			Close:     payload.C[i],
			Volume:    vol,
		})
	}
	candles = models.NormalizeSeries(candles)
	if err := models.ValidateSeries(candles); err != nil {
		return nil, models.NewProviderError("finnhub", models.FailMalformed, err)
	}
	return candles, nil
}

type fhSearch struct {
	Count  int `json:"count"`
	Result []struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"result"`
}

func (f *Finnhub) Search(ctx context.Context, query string, limit int) ([]models.Instrument, error) {
	var payload fhSearch
	if err := f.call(ctx, "/search", map[string][]string{"q": {query}}, &payload); err != nil {
		return nil, err
	}
	if payload.Count == 0 {
		return nil, models.NewProviderError("finnhub", models.FailEmpty, nil)
	}
	out := make([]models.Instrument, 0, len(payload.Result))
	for _, r := range payload.Result {
		if r.Type != "" && r.Type != "Common Stock" {
			continue
		}
		out = append(out, models.Instrument{Symbol: r.Symbol, Name: r.Description})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, models.NewProviderError("finnhub", models.FailEmpty, nil)
	}
	return out, nil
}
