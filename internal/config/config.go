package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Host              string `json:"host" yaml:"host"`
	Port              string `json:"port" yaml:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
}

type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type AlphaVantage struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	APIKey  string `json:"api_key" yaml:"api_key"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

type Yahoo struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	Range     string `json:"range" yaml:"range"`
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

type FMP struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	APIKey      string `json:"api_key" yaml:"api_key"`
	BaseURL     string `json:"base_url" yaml:"base_url"`
	HistoryDays int    `json:"history_days" yaml:"history_days"`
}

type Massive struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	APIKey      string `json:"api_key" yaml:"api_key"`
	BaseURL     string `json:"base_url" yaml:"base_url"`
	HistoryDays int    `json:"history_days" yaml:"history_days"`
}

type Config struct {
	Server       Server       `json:"server" yaml:"server"`
	Log          Log          `json:"log" yaml:"log"`
	AlphaVantage AlphaVantage `json:"alpha_vantage" yaml:"alpha_vantage"`
	Yahoo        Yahoo        `json:"yahoo" yaml:"yahoo"`
	FMP          FMP          `json:"fmp" yaml:"fmp"`
	Massive      Massive      `json:"massive" yaml:"massive"`
}

func Default() Config {
	return Config{
		Server: Server{Host: "0.0.0.0", Port: "8080", RequestTimeoutSec: 15},
		Log:    Log{Level: "info", Format: "text"},
		AlphaVantage: AlphaVantage{
			Enabled: true,
			BaseURL: "https://www.alphavantage.co/query",
		},
		Yahoo: Yahoo{
			Enabled:   true,
			BaseURL:   "https://query2.finance.yahoo.com/v8/finance/chart",
			Range:     "2y",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		FMP: FMP{
			Enabled:     true,
			BaseURL:     "https://financialmodelingprep.com/stable",
			HistoryDays: 400,
		},
		Massive: Massive{
			Enabled:     true,
			BaseURL:     "https://api.massive.com",
			HistoryDays: 400,
		},
	}
}

// Load reads config from path (JSON, or YAML for .yaml/.yml). If path is
// empty, config.json then config.yaml in the working directory are tried.
// A .env file, when present, is loaded into the environment, and environment
// variables then override select fields, API keys in particular.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, candidate := range []string{"config.json", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	// upstream calls are always bounded
	if cfg.Server.RequestTimeoutSec <= 0 {
		cfg.Server.RequestTimeoutSec = Default().Server.RequestTimeoutSec
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return c.Server.Host + ":" + c.Server.Port }

func applyEnv(cfg *Config) {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		if x, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_BASE_URL"); v != "" {
		cfg.AlphaVantage.BaseURL = v
	}
	if v, ok := envBool("ALPHA_VANTAGE_ENABLED"); ok {
		cfg.AlphaVantage.Enabled = v
	}

	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Yahoo.BaseURL = v
	}
	if v := os.Getenv("YAHOO_RANGE"); v != "" {
		cfg.Yahoo.Range = v
	}
	if v, ok := envBool("YAHOO_ENABLED"); ok {
		cfg.Yahoo.Enabled = v
	}

	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.FMP.APIKey = v
	}
	if v := os.Getenv("FMP_BASE_URL"); v != "" {
		cfg.FMP.BaseURL = v
	}
	if v, ok := envBool("FMP_ENABLED"); ok {
		cfg.FMP.Enabled = v
	}

	if v := os.Getenv("MASSIVE_API_KEY"); v != "" {
		cfg.Massive.APIKey = v
	}
	if v := os.Getenv("MASSIVE_BASE_URL"); v != "" {
		cfg.Massive.BaseURL = v
	}
	if v, ok := envBool("MASSIVE_ENABLED"); ok {
		cfg.Massive.Enabled = v
	}
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	}
	return false, false
}
