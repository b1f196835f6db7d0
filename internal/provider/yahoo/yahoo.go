// Package yahoo reads daily bars from the unofficial Yahoo Finance chart API.
// No key is needed, but the endpoint rejects requests without a browser
// User-Agent.
package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stockquotes/internal/httpx"
	"stockquotes/internal/provider"
	"stockquotes/internal/quote"
)

const Slug = "yahoo-finance"

type Config struct {
	BaseURL string
	// Range is the chart lookback, e.g. "1y" or "2y".
	Range     string
	UserAgent string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
	log    logrus.FieldLogger
}

func New(cfg Config, hc *httpx.Client, log logrus.FieldLogger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query2.finance.yahoo.com/v8/finance/chart"
	}
	if cfg.Range == "" {
		cfg.Range = "2y"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	return &Provider{cfg: cfg, client: hc, log: log}
}

func (p *Provider) Name() string { return Slug }

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency             string `json:"currency"`
		Symbol               string `json:"symbol"`
		LongName             string `json:"longName"`
		ShortName            string `json:"shortName"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open  []*float64 `json:"open"`
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// bar is one trading day with a known close.
type bar struct {
	date  string
	close float64
	open  float64
}

func (p *Provider) Fetch(ctx context.Context, ticker string) (*quote.Result, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	log := p.log.WithFields(logrus.Fields{"provider": Slug, "ticker": symbol})
	log.Info("fetching quote")

	q := url.Values{
		"range":    {p.cfg.Range},
		"interval": {"1d"},
	}
	h := http.Header{"User-Agent": {p.cfg.UserAgent}}

	var resp chartResponse
	err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/"+url.PathEscape(symbol), q, h, &resp)
	var se *httpx.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil, provider.NotFoundf(Slug, "Ticker %q not found on Yahoo Finance.", symbol)
	}
	if err != nil {
		return nil, provider.FromHTTP(Slug, err)
	}

	if e := resp.Chart.Error; e != nil {
		desc := e.Description
		if desc == "" {
			desc = "Unknown error"
		}
		return nil, provider.Validationf(Slug, "Yahoo Finance error: %s", desc)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, provider.Validationf(Slug, "No data found for ticker: %s", ticker)
	}
	item := resp.Chart.Result[0]

	bars := validBars(item, location(item.Meta.ExchangeTimezoneName))
	if len(bars) == 0 {
		return nil, provider.Validationf(Slug, "No valid price data for: %s", ticker)
	}

	points := make([]quote.Point, 0, len(bars))
	for _, b := range bars {
		points = append(points, quote.Point{Date: b.date, Close: quote.Round2(b.close)})
	}
	series := quote.NewSeries(points)

	latest := bars[len(bars)-1]
	price := quote.Round2(latest.close)
	open := latest.open
	if open == 0 {
		open = price
	}
	change, pct := quote.Change(price, open)

	name := symbol
	switch {
	case item.Meta.LongName != "":
		name = item.Meta.LongName
	case item.Meta.ShortName != "":
		name = item.Meta.ShortName
	}
	currency := item.Meta.Currency
	if currency == "" {
		currency = "USD"
	}

	res := &quote.Result{
		Symbol:        symbol,
		Name:          name,
		Price:         price,
		Currency:      currency,
		Change:        change,
		ChangePercent: pct,
		Timestamp:     latest.date,
	}
	quote.Attach(res, series)

	log.WithField("price", res.Price).Info("fetched quote")
	return res, nil
}

// validBars zips timestamps with closes and opens, oldest first, dropping
// days whose close is null.
func validBars(item chartResult, loc *time.Location) []bar {
	if len(item.Indicators.Quote) == 0 {
		return nil
	}
	qt := item.Indicators.Quote[0]
	bars := make([]bar, 0, len(item.Timestamp))
	for i, ts := range item.Timestamp {
		if i >= len(qt.Close) || qt.Close[i] == nil {
			continue
		}
		b := bar{
			date:  time.Unix(ts, 0).In(loc).Format(quote.DateLayout),
			close: *qt.Close[i],
		}
		if i < len(qt.Open) && qt.Open[i] != nil {
			b.open = *qt.Open[i]
		}
		bars = append(bars, b)
	}
	return bars
}

func location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
