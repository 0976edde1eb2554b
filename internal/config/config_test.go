package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}), "")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5173", cfg.ListenAddr)
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, "sqlite://mercadotech.db", cfg.StorageURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.Empty(t, cfg.Brokers())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_URL":       "https://api.mercadotech.co",
		"STORAGE_URL":   "redis://localhost:6379/2",
		"HTTP_TIMEOUT":  "3s",
		"LOG_PRETTY":    "true",
		"KAFKA_BROKERS": "k1:9092, ,k2:9092",
	}), "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.mercadotech.co", cfg.APIURL)
	assert.Equal(t, "redis://localhost:6379/2", cfg.StorageURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
}

func TestLoad_BadDuration(t *testing.T) {
	_, _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"HTTP_TIMEOUT": "soon",
	}), "")
	require.Error(t, err)
}

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV(" a ,b,"))
}
