package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "stockquotes", "debug", "json")

	require.Equal(t, logrus.DebugLevel, log.Logger.GetLevel())
	log.WithField("provider", "fmp").Info("fetched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "stockquotes", entry["service"])
	require.Equal(t, "fmp", entry["provider"])
	require.Equal(t, "fetched", entry["msg"])
}

func TestNew_LevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "stockquotes", "nonsense", "text")

	require.Equal(t, logrus.InfoLevel, log.Logger.GetLevel())
	log.Debug("hidden")
	require.Empty(t, buf.String())
}
