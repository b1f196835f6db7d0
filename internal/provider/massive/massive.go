// Package massive reads daily aggregates from the Massive (Polygon-compatible)
// REST API.
package massive

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"stockquotes/internal/httpx"
	"stockquotes/internal/provider"
	"stockquotes/internal/quote"
)

const Slug = "massive"

// Bars are stamped at midnight exchange time, so dates are rendered there.
const marketZone = "America/New_York"

type Config struct {
	APIKey      string
	BaseURL     string
	HistoryDays int
	NameTimeout time.Duration
	Now         func() time.Time
}

type Provider struct {
	cfg    Config
	client *httpx.Client
	log    logrus.FieldLogger
	loc    *time.Location
}

func New(cfg Config, hc *httpx.Client, log logrus.FieldLogger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.massive.com"
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 400
	}
	if cfg.NameTimeout <= 0 {
		cfg.NameTimeout = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	loc, err := time.LoadLocation(marketZone)
	if err != nil {
		log.WithError(err).Warn("market time zone unavailable, using UTC")
		loc = time.UTC
	}
	return &Provider{cfg: cfg, client: hc, log: log, loc: loc}
}

func (p *Provider) Name() string { return Slug }

type aggsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		T int64    `json:"t"`
		C *float64 `json:"c"`
	} `json:"results"`
}

type tickerResponse struct {
	Results struct {
		Name string `json:"name"`
	} `json:"results"`
}

func (p *Provider) Fetch(ctx context.Context, ticker string) (*quote.Result, error) {
	if p.cfg.APIKey == "" {
		return nil, provider.Configf(Slug, "Massive API key not configured. Please add MASSIVE_API_KEY to your .env file. Get a free key at https://massive.com")
	}
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	log := p.log.WithFields(logrus.Fields{"provider": Slug, "ticker": symbol})
	log.Info("fetching quote")

	now := p.cfg.Now().In(p.loc)
	from := now.AddDate(0, 0, -p.cfg.HistoryDays).Format(quote.DateLayout)
	to := now.Format(quote.DateLayout)
	aggsURL := p.cfg.BaseURL + "/v2/aggs/ticker/" + url.PathEscape(symbol) + "/range/1/day/" + from + "/" + to

	var aggs aggsResponse
	name := symbol
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := url.Values{
			"adjusted": {"true"},
			"sort":     {"desc"},
			"limit":    {strconv.Itoa(p.cfg.HistoryDays)},
			"apiKey":   {p.cfg.APIKey},
		}
		return provider.FromHTTP(Slug, p.client.GetJSON(gctx, aggsURL, q, nil, &aggs))
	})
	g.Go(func() error {
		name = p.companyName(gctx, symbol, log)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if aggs.Status == "ERROR" {
		return nil, provider.Validationf(Slug, "Massive API error for ticker: %s", ticker)
	}
	points := make([]quote.Point, 0, len(aggs.Results))
	for _, bar := range aggs.Results {
		if bar.C == nil {
			continue
		}
		points = append(points, quote.Point{
			Date:  time.UnixMilli(bar.T).In(p.loc).Format(quote.DateLayout),
			Close: quote.Round2(*bar.C),
		})
	}
	series := quote.NewSeries(points)
	latest, ok := series.Latest()
	if !ok {
		return nil, provider.Validationf(Slug, "No data found for ticker: %s", ticker)
	}

	var change, pct float64
	if len(series) > 1 {
		change, pct = quote.Change(latest.Close, series[1].Close)
	}

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

func (p *Provider) companyName(ctx context.Context, symbol string, log logrus.FieldLogger) string {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.NameTimeout)
	defer cancel()

	var ref tickerResponse
	q := url.Values{"apiKey": {p.cfg.APIKey}}
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/v3/reference/tickers/"+url.PathEscape(symbol), q, nil, &ref); err != nil {
		log.WithError(err).Warn("company name lookup failed")
		return symbol
	}
	if ref.Results.Name == "" {
		return symbol
	}
	return ref.Results.Name
}
