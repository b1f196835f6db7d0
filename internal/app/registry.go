// Package app wires configuration into the set of quote providers shared by
// the server and the fetch CLI.
package app

import (
	"github.com/sirupsen/logrus"

	"stockquotes/internal/config"
	"stockquotes/internal/httpx"
	"stockquotes/internal/provider"
	"stockquotes/internal/provider/alphavantage"
	"stockquotes/internal/provider/fmp"
	"stockquotes/internal/provider/massive"
	"stockquotes/internal/provider/yahoo"
)

// BuildRegistry registers every enabled provider. Providers whose key is
// missing are still registered so callers get a config error naming the
// variable to set, not an unknown-provider error.
func BuildRegistry(cfg config.Config, hc *httpx.Client, log logrus.FieldLogger) provider.Registry {
	var ps []provider.Provider

	if cfg.AlphaVantage.Enabled {
		if cfg.AlphaVantage.APIKey == "" {
			log.Warn("alpha_vantage enabled but ALPHA_VANTAGE_API_KEY not set")
		}
		ps = append(ps, alphavantage.New(alphavantage.Config{
			APIKey:  cfg.AlphaVantage.APIKey,
			BaseURL: cfg.AlphaVantage.BaseURL,
		}, hc, log))
	}
	if cfg.Yahoo.Enabled {
		ps = append(ps, yahoo.New(yahoo.Config{
			BaseURL:   cfg.Yahoo.BaseURL,
			Range:     cfg.Yahoo.Range,
			UserAgent: cfg.Yahoo.UserAgent,
		}, hc, log))
	}
	if cfg.FMP.Enabled {
		if cfg.FMP.APIKey == "" {
			log.Warn("fmp enabled but FMP_API_KEY not set")
		}
		ps = append(ps, fmp.New(fmp.Config{
			APIKey:      cfg.FMP.APIKey,
			BaseURL:     cfg.FMP.BaseURL,
			HistoryDays: cfg.FMP.HistoryDays,
		}, hc, log))
	}
	if cfg.Massive.Enabled {
		if cfg.Massive.APIKey == "" {
			log.Warn("massive enabled but MASSIVE_API_KEY not set")
		}
		ps = append(ps, massive.New(massive.Config{
			APIKey:      cfg.Massive.APIKey,
			BaseURL:     cfg.Massive.BaseURL,
			HistoryDays: cfg.Massive.HistoryDays,
		}, hc, log))
	}

	return provider.NewRegistry(ps...)
}
