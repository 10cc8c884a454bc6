package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/forecast.db", cfg.DB.Path)
	assert.Equal(t, 10, cfg.Engine.DefaultYears)
	assert.InDelta(t, 0.30, cfg.Engine.TaxRate, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FORECAST_SERVER_PORT", "9090")
	t.Setenv("FORECAST_ENGINE_DEFAULT_YEARS", "25")
	t.Setenv("FORECAST_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Engine.DefaultYears)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "FORECAST_SERVER_PORT", "70000"},
		{"zero horizon", "FORECAST_ENGINE_DEFAULT_YEARS", "0"},
		{"tax rate of one", "FORECAST_ENGINE_TAX_RATE", "1.0"},
		{"bad log level", "FORECAST_LOG_LEVEL", "whisper"},
		{"bad log format", "FORECAST_LOG_FORMAT", "xml"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	logger := NewLogger(cfg)

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}
