// Package alphavantage fetches daily closes from the Alpha Vantage
// TIME_SERIES_DAILY endpoint. The daily change is close vs the same day's
// open, and the company name comes from a best-effort OVERVIEW call.
package alphavantage

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"stockquotes/internal/httpx"
	"stockquotes/internal/provider"
	"stockquotes/internal/quote"
)

// Slug is the registry name of this provider.
const Slug = "alpha-vantage"

type Config struct {
	APIKey  string
	BaseURL string
	// NameTimeout bounds the OVERVIEW lookup. Defaults to 10s.
	NameTimeout time.Duration
}

type Provider struct {
	cfg    Config
	client *httpx.Client
	log    logrus.FieldLogger
}

func New(cfg Config, hc *httpx.Client, log logrus.FieldLogger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.alphavantage.co/query"
	}
	if cfg.NameTimeout <= 0 {
		cfg.NameTimeout = 10 * time.Second
	}
	return &Provider{cfg: cfg, client: hc, log: log}
}

func (p *Provider) Name() string { return Slug }

type dailyResponse struct {
	ErrorMessage string              `json:"Error Message"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	TimeSeries   map[string]dailyBar `json:"Time Series (Daily)"`
}

type dailyBar struct {
	Open  string `json:"1. open"`
	Close string `json:"4. close"`
}

type overviewResponse struct {
	Name string `json:"Name"`
}

func (p *Provider) Fetch(ctx context.Context, ticker string) (*quote.Result, error) {
	if p.cfg.APIKey == "" {
		return nil, provider.Configf(Slug, "Alpha Vantage API key not configured. Please add ALPHA_VANTAGE_API_KEY to your .env file.")
	}
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	log := p.log.WithFields(logrus.Fields{"provider": Slug, "ticker": symbol})
	log.Info("fetching quote")

	var daily dailyResponse
	name := symbol
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := url.Values{
			"function":   {"TIME_SERIES_DAILY"},
			"symbol":     {symbol},
			"outputsize": {"full"},
			"apikey":     {p.cfg.APIKey},
		}
		return provider.FromHTTP(Slug, p.client.GetJSON(gctx, p.cfg.BaseURL, q, nil, &daily))
	})
	g.Go(func() error {
		name = p.companyName(gctx, symbol, log)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	switch {
	case daily.ErrorMessage != "":
		return nil, provider.Validationf(Slug, "Invalid ticker symbol: %s", ticker)
	case daily.Note != "", daily.Information != "":
		return nil, provider.Validationf(Slug, "Alpha Vantage API rate limit reached (25 calls/day). Please try again later or switch to Yahoo Finance.")
	case daily.TimeSeries == nil:
		return nil, provider.Validationf(Slug, "No data found for ticker: %s", ticker)
	}

	points := make([]quote.Point, 0, len(daily.TimeSeries))
	for date, bar := range daily.TimeSeries {
		c, err := parsePrice(bar.Close)
		if err != nil {
			log.WithError(err).WithField("date", date).Debug("skipping bar without close")
			continue
		}
		points = append(points, quote.Point{Date: date, Close: c})
	}
	series := quote.NewSeries(points)
	latest, ok := series.Latest()
	if !ok {
		return nil, provider.Validationf(Slug, "No trading data available for: %s", ticker)
	}

	open, err := parsePrice(daily.TimeSeries[latest.Date].Open)
	if err != nil {
		open = latest.Close
	}
	change, pct := quote.Change(latest.Close, open)

	res := &quote.Result{
		Symbol:        symbol,
		Name:          name,
		Price:         latest.Close,
		Currency:      "USD",
		Change:        change,
		ChangePercent: pct,
		Timestamp:     latest.Date,
	}
	quote.Attach(res, series)

	log.WithField("price", res.Price).Info("fetched quote")
	return res, nil
}

// companyName looks the symbol up via OVERVIEW. Any failure falls back to the
// symbol itself.
func (p *Provider) companyName(ctx context.Context, symbol string, log logrus.FieldLogger) string {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.NameTimeout)
	defer cancel()

	q := url.Values{
		"function": {"OVERVIEW"},
		"symbol":   {symbol},
		"apikey":   {p.cfg.APIKey},
	}
	var ov overviewResponse
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL, q, nil, &ov); err != nil {
		log.WithError(err).Warn("company name lookup failed")
		return symbol
	}
	if ov.Name == "" {
		return symbol
	}
	return ov.Name
}

func parsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
