package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"stockquotes/internal/app"
	"stockquotes/internal/config"
	"stockquotes/internal/httpx"
	"stockquotes/internal/logging"
	"stockquotes/internal/provider"
)

func main() {
	var name, ticker, configPath string
	var timeout int

	flag.StringVar(&name, "provider", getenv("PROVIDER", "yahoo-finance"), "provider slug, e.g. yahoo-finance or alpha-vantage")
	flag.StringVar(&ticker, "ticker", getenv("TICKER", ""), "ticker symbol, e.g. AAPL")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json or config.yaml (optional)")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (overrides config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	log := logging.New("stockquotes-fetch", cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}
	if strings.TrimSpace(ticker) == "" {
		log.Fatal("no ticker provided; use -ticker")
	}

	d := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	reg := app.BuildRegistry(cfg, httpx.New(d), log)
	p, ok := reg.Lookup(name)
	if !ok {
		log.Fatalf("unknown provider %q; available: %s", name, strings.Join(reg.Names(), ", "))
	}

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	res, err := p.Fetch(ctx, ticker)
	if err != nil {
		log.WithError(err).WithField("kind", provider.KindOf(err).String()).Error("fetch failed")
		cancel()
		os.Exit(1)
	}

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.WithError(err).Fatal("encode")
	}
	fmt.Println(string(b))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
