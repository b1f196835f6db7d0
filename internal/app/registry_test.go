package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockquotes/internal/config"
	"stockquotes/internal/httpx"
	"stockquotes/internal/logging"
	"stockquotes/internal/provider"
)

func TestBuildRegistry_AllEnabledByDefault(t *testing.T) {
	reg := BuildRegistry(config.Default(), httpx.New(time.Second), logging.Discard())

	require.Equal(t, []string{"alpha-vantage", "fmp", "massive", "yahoo-finance"}, reg.Names())
}

func TestBuildRegistry_SkipsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.AlphaVantage.Enabled = false
	cfg.Massive.Enabled = false

	reg := BuildRegistry(cfg, httpx.New(time.Second), logging.Discard())

	require.Equal(t, 2, reg.Len())
	_, ok := reg.Lookup("alpha-vantage")
	require.False(t, ok)
	_, ok = reg.Lookup("yahoo-finance")
	require.True(t, ok)
}

func TestBuildRegistry_MissingKeyFailsAtFetch(t *testing.T) {
	reg := BuildRegistry(config.Default(), httpx.New(time.Second), logging.Discard())

	p, ok := reg.Lookup("fmp")
	require.True(t, ok)
	_, err := p.Fetch(t.Context(), "AAPL")
	require.Equal(t, provider.KindConfig, provider.KindOf(err))
}
