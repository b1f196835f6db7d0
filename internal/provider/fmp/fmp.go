// Package fmp talks to the Financial Modeling Prep stable API: /quote for the
// current price and daily change, /historical-price-eod/light for history.
package fmp

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stockquotes/internal/httpx"
	"stockquotes/internal/provider"
	"stockquotes/internal/quote"
)

const Slug = "fmp"

type Config struct {
	APIKey      string
	BaseURL     string
	HistoryDays int
	// Now is the clock used for the history window. Defaults to time.Now.
	Now func() time.Time
}

type Provider struct {
	cfg    Config
	client *httpx.Client
	log    logrus.FieldLogger
}

func New(cfg Config, hc *httpx.Client, log logrus.FieldLogger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://financialmodelingprep.com/stable"
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 400
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Provider{cfg: cfg, client: hc, log: log}
}

func (p *Provider) Name() string { return Slug }

// quoteItem is one /quote entry. The stable API spells the percentage
// changePercentage, the legacy one changesPercentage.
type quoteItem struct {
	Name              string   `json:"name"`
	Price             *float64 `json:"price"`
	Change            *float64 `json:"change"`
	ChangePercentage  *float64 `json:"changePercentage"`
	ChangesPercentage *float64 `json:"changesPercentage"`
	Error             string   `json:"error"`
	ErrorMessage      string   `json:"Error Message"`
}

type eodPoint struct {
	Date  string   `json:"date"`
	Price *float64 `json:"price"`
}

func (p *Provider) Fetch(ctx context.Context, ticker string) (*quote.Result, error) {
	if p.cfg.APIKey == "" {
		return nil, provider.Configf(Slug, "FMP API key not configured. Please add FMP_API_KEY to your .env file. Get a free key at https://financialmodelingprep.com/register")
	}
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	log := p.log.WithFields(logrus.Fields{"provider": Slug, "ticker": symbol})
	log.Info("fetching quote")

	q, err := p.quote(ctx, symbol, ticker)
	if err != nil {
		return nil, err
	}
	series, err := p.history(ctx, symbol, ticker)
	if err != nil {
		return nil, err
	}

	price := quote.Round2(*q.Price)
	pct := q.ChangePercentage
	if pct == nil {
		pct = q.ChangesPercentage
	}
	name := q.Name
	if name == "" {
		name = symbol
	}
	latest, _ := series.Latest()

	res := &quote.Result{
		Symbol:        symbol,
		Name:          name,
		Price:         price,
		Currency:      "USD",
		Change:        quote.Round2(deref(q.Change)),
		ChangePercent: quote.Round2(deref(pct)),
		Timestamp:     latest.Date,
	}
	quote.Attach(res, series)

	log.WithField("price", res.Price).Info("fetched quote")
	return res, nil
}

func (p *Provider) quote(ctx context.Context, symbol, ticker string) (quoteItem, error) {
	params := url.Values{
		"symbol": {symbol},
		"apikey": {p.cfg.APIKey},
	}
	var raw json.RawMessage
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/quote", params, nil, &raw); err != nil {
		return quoteItem{}, provider.FromHTTP(Slug, err)
	}

	var item quoteItem
	switch firstByte(raw) {
	case '[':
		var items []quoteItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return quoteItem{}, provider.Unexpected(Slug, "invalid quote response", err)
		}
		if len(items) == 0 {
			return quoteItem{}, provider.Validationf(Slug, "No data found for ticker: %s", ticker)
		}
		item = items[0]
	case '{':
		if err := json.Unmarshal(raw, &item); err != nil {
			return quoteItem{}, provider.Unexpected(Slug, "invalid quote response", err)
		}
		if item.Error != "" || item.ErrorMessage != "" {
			return quoteItem{}, provider.Validationf(Slug, "No data found for ticker: %s", ticker)
		}
	default:
		return quoteItem{}, provider.Validationf(Slug, "No data found for ticker: %s", ticker)
	}
	if item.Price == nil {
		return quoteItem{}, provider.Unexpected(Slug, "quote response has no price", nil)
	}
	return item, nil
}

func (p *Provider) history(ctx context.Context, symbol, ticker string) (quote.Series, error) {
	from := p.cfg.Now().AddDate(0, 0, -p.cfg.HistoryDays).Format(quote.DateLayout)
	params := url.Values{
		"symbol": {symbol},
		"from":   {from},
		"apikey": {p.cfg.APIKey},
	}
	var raw json.RawMessage
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/historical-price-eod/light", params, nil, &raw); err != nil {
		return nil, provider.FromHTTP(Slug, err)
	}

	var points []eodPoint
	switch firstByte(raw) {
	case '[':
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, provider.Unexpected(Slug, "invalid history response", err)
		}
	case '{':
		var wrapped struct {
			Historical []eodPoint `json:"historical"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, provider.Unexpected(Slug, "invalid history response", err)
		}
		points = wrapped.Historical
	}

	out := make([]quote.Point, 0, len(points))
	for _, pt := range points {
		if pt.Price == nil || pt.Date == "" {
			continue
		}
		out = append(out, quote.Point{Date: pt.Date, Close: quote.Round2(*pt.Price)})
	}
	if len(out) == 0 {
		return nil, provider.Validationf(Slug, "No historical data available for: %s", ticker)
	}
	return quote.NewSeries(out), nil
}

// firstByte returns the first non-space byte of a JSON document, or 0.
func firstByte(raw json.RawMessage) byte {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0
	}
	return s[0]
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
