package providers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
)

// Stooq serves daily candles from the stooq.com CSV export. It only
// carries end-of-day data, so intraday interval requests are declined
// with an empty failure and the walk moves on.
type Stooq struct {
	client  *xhttp.Client
	baseURL string
}

// NewStooq creates the Stooq provider.
func NewStooq(client *xhttp.Client, baseURL string) *Stooq {
	return &Stooq{client: client, baseURL: baseURL}
}

func (s *Stooq) Name() string  { return "stooq" }
func (s *Stooq) Priority() int { return 10 }

func (s *Stooq) Supports(c drepo.Capability) bool { return c == drepo.CapCandles }

func (s *Stooq) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, models.NewProviderError("stooq", models.FailUpstream, fmt.Errorf("quote not supported"))
}

func (s *Stooq) Search(ctx context.Context, query string, limit int) ([]models.Instrument, error) {
	return nil, models.NewProviderError("stooq", models.FailUpstream, fmt.Errorf("search not supported"))
}

// stooqSymbol lowercases the exchange-qualified symbol; stooq uses the
// same ".ns" suffix convention for NSE listings.
func stooqSymbol(symbol string) string {
	return strings.ToLower(symbol)
}

// Candles downloads the daily CSV export and filters it to the period.
func (s *Stooq) Candles(ctx context.Context, symbol string, period drepo.Period, interval drepo.Interval) ([]models.Candle, error) {
	if drepo.IsIntraday(interval) {
		return nil, models.NewProviderError("stooq", models.FailEmpty, fmt.Errorf("intraday not available"))
	}

	var raw []byte
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL,
		QueryParams: map[string][]string{
			"s": {stooqSymbol(symbol)},
			"i": {"d"},
		},
	}, &raw)
	if err != nil {
		return nil, classifyHTTPError("stooq", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.HasPrefix(raw, []byte("No data")) {
		return nil, models.NewProviderError("stooq", models.FailNotFound, nil)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, models.NewProviderError("stooq", models.FailMalformed, err)
	}
	if len(records) < 2 {
		return nil, models.NewProviderError("stooq", models.FailEmpty, nil)
	}

	start := drepo.PeriodStart(period, time.Now().UTC())
	candles := make([]models.Candle, 0, len(records)-1)
	for _, rec := range records[1:] { // skip Date,Open,High,Low,Close,Volume header
		if len(rec) < 5 {
			continue
		}
		ts, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		open, err1 := strconv.ParseFloat(rec[1], 64)
		high, err2 := strconv.ParseFloat(rec[2], 64)
		low, err3 := strconv.ParseFloat(rec[3], 64)
		closep, err4 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		var vol float64
		if len(rec) >= 6 {
			vol, _ = strconv.ParseFloat(rec[5], 64)
		}
		candles = append(candles, models.Candle{
			Timestamp: ts.UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closep,
			Volume:    vol,
		})
	}
	if len(candles) == 0 {
		return nil, models.NewProviderError("stooq", models.FailEmpty, nil)
	}
	candles = models.NormalizeSeries(candles)
	if err := models.ValidateSeries(candles); err != nil {
		return nil, models.NewProviderError("stooq", models.FailMalformed, err)
	}
	return candles, nil
}
