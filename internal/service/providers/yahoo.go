package providers

import (
	"context"
	"fmt"
	"strings"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"

	"time"
)

// Yahoo serves quotes, candles and symbol search from the public Yahoo
// Finance chart/quote/search endpoints. It is the preferred upstream
// after the local warehouse.
type Yahoo struct {
	client    *xhttp.Client
	chartURL  string
	quoteURL  string
	searchURL string
}

// NewYahoo creates the Yahoo provider.
func NewYahoo(client *xhttp.Client, chartURL, quoteURL, searchURL string) *Yahoo {
	return &Yahoo{client: client, chartURL: chartURL, quoteURL: quoteURL, searchURL: searchURL}
}

func (y *Yahoo) Name() string  { return "yahoo" }
func (y *Yahoo) Priority() int { return 5 }

func (y *Yahoo) Supports(c drepo.Capability) bool {
	switch c {
	case drepo.CapQuote, drepo.CapCandles, drepo.CapSearch:
		return true
	}
	return false
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				ExchangeName       string  `json:"exchangeName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Candles fetches bars from the chart endpoint and normalizes them. Rows
// with any missing OHLC field are dropped (Yahoo emits nulls for halted
// sessions).
func (y *Yahoo) Candles(ctx context.Context, symbol string, period drepo.Period, interval drepo.Interval) ([]models.Candle, error) {
	var payload yahooChartResponse
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s", strings.TrimRight(y.chartURL, "/"), symbol),
		QueryParams: map[string][]string{
			"range":    {string(period)},
			"interval": {string(interval)},
			"events":   {"div,splits"},
		},
	}, &payload)
	if err != nil {
		return nil, classifyHTTPError("yahoo", err)
	}
	if payload.Chart.Error != nil {
		if payload.Chart.Error.Code == "Not Found" {
			return nil, models.NewProviderError("yahoo", models.FailNotFound, fmt.Errorf("%s", payload.Chart.Error.Description))
		}
		return nil, models.NewProviderError("yahoo", models.FailUpstream, fmt.Errorf("%s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description))
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, models.NewProviderError("yahoo", models.FailEmpty, nil)
	}

	res := payload.Chart.Result[0]
	q := res.Indicators.Quote[0]
	candles := make([]models.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(q.Open) || i >= len(q.High) || i >= len(q.Low) || i >= len(q.Close) {
			break
		}
		if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
			continue
		}
		var vol float64
		if i < len(q.Volume) && q.Volume[i] != nil {
			vol = *q.Volume[i]
		}
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      *q.Open[i],
			High:      *q.High[i],
			Low:       *q.Low[i],
			Close:     *q.Close[i],
			Volume:    vol,
		})
	}
	if len(candles) == 0 {
		return nil, models.NewProviderError("yahoo", models.FailEmpty, nil)
	}
	candles = models.NormalizeSeries(candles)
	if err := models.ValidateSeries(candles); err != nil {
		return nil, models.NewProviderError("yahoo", models.FailMalformed, err)
	}
	return candles, nil
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			LongName                   string  `json:"longName"`
			ShortName                  string  `json:"shortName"`
			Currency                   string  `json:"currency"`
			FullExchangeName           string  `json:"fullExchangeName"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			RegularMarketOpen          float64 `json:"regularMarketOpen"`
			RegularMarketDayHigh       float64 `json:"regularMarketDayHigh"`
			RegularMarketDayLow        float64 `json:"regularMarketDayLow"`
			FiftyTwoWeekHigh           float64 `json:"fiftyTwoWeekHigh"`
			FiftyTwoWeekLow            float64 `json:"fiftyTwoWeekLow"`
			RegularMarketVolume        float64 `json:"regularMarketVolume"`
			AverageDailyVolume3Month   float64 `json:"averageDailyVolume3Month"`
			MarketCap                  float64 `json:"marketCap"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// Quote fetches a snapshot from the quote endpoint. A missing result or a
// zero price is treated as not found so the coordinator falls through.
func (y *Yahoo) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var payload yahooQuoteResponse
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         y.quoteURL,
		QueryParams: map[string][]string{"symbols": {symbol}},
	}, &payload)
	if err != nil {
		return nil, classifyHTTPError("yahoo", err)
	}
	if len(payload.QuoteResponse.Result) == 0 {
		return nil, models.NewProviderError("yahoo", models.FailNotFound, nil)
	}
	r := payload.QuoteResponse.Result[0]
	if r.RegularMarketPrice == 0 {
		return nil, models.NewProviderError("yahoo", models.FailEmpty, nil)
	}
	name := r.LongName
	if name == "" {
		name = r.ShortName
	}
	return &models.Quote{
		Symbol:           r.Symbol,
		Name:             name,
		Exchange:         r.FullExchangeName,
		Currency:         r.Currency,
		CurrentPrice:     r.RegularMarketPrice,
		PreviousClose:    r.RegularMarketPreviousClose,
		Open:             r.RegularMarketOpen,
		DayHigh:          r.RegularMarketDayHigh,
		DayLow:           r.RegularMarketDayLow,
		FiftyTwoWeekHigh: r.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  r.FiftyTwoWeekLow,
		Volume:           r.RegularMarketVolume,
		AverageVolume:    r.AverageDailyVolume3Month,
		MarketCap:        r.MarketCap,
	}, nil
}

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		Sector    string `json:"sector"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search resolves free-text queries to instruments, keeping equities only.
func (y *Yahoo) Search(ctx context.Context, query string, limit int) ([]models.Instrument, error) {
	var payload yahooSearchResponse
	err := y.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    y.searchURL,
		QueryParams: map[string][]string{
			"q":           {query},
			"quotesCount": {fmt.Sprintf("%d", limit)},
			"newsCount":   {"0"},
		},
	}, &payload)
	if err != nil {
		return nil, classifyHTTPError("yahoo", err)
	}
	out := make([]models.Instrument, 0, len(payload.Quotes))
	for _, q := range payload.Quotes {
		if q.QuoteType != "" && q.QuoteType != "EQUITY" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		out = append(out, models.Instrument{
			Symbol:   q.Symbol,
			Name:     name,
			Sector:   q.Sector,
			Exchange: q.Exchange,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, models.NewProviderError("yahoo", models.FailEmpty, nil)
	}
	return out, nil
}
