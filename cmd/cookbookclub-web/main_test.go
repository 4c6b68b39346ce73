package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjax13/CookbookClub/internal/config"
)

func baseConfig() config.Config {
	return config.Config{
		Storage:     "json",
		HTTPHost:    "127.0.0.1",
		HTTPPort:    4173,
		LogLevel:    "info",
		LogFormat:   "json",
		CLILogLevel: "error",
	}
}

func TestApplyFlagsOverridesEnvironment(t *testing.T) {
	cfg, err := applyFlags(baseConfig(), []string{"--port", "9000", "--storage", "sqlite", "--data", "club.sqlite"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, "club.sqlite", cfg.DataPath)
	assert.Equal(t, "127.0.0.1", cfg.HTTPHost)

	_, err = applyFlags(baseConfig(), []string{"--storage", "csv"}, io.Discard)
	require.EqualError(t, err, "invalid values: COOKBOOK_STORAGE")
}

func TestNewAppServesAPIAndMetrics(t *testing.T) {
	for _, storage := range []string{"json", "sqlite"} {
		t.Run(storage, func(t *testing.T) {
			cfg := baseConfig()
			cfg.Storage = storage
			cfg.DataPath = filepath.Join(t.TempDir(), "state."+storage)

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			a, err := newApp(context.Background(), cfg, logger, prometheus.NewRegistry())
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })

			server := httptest.NewServer(a.handler)
			t.Cleanup(server.Close)

			res, err := http.Post(server.URL+"/api/club/init", "application/json",
				strings.NewReader(`{"clubName":"Sunday Supper","hostName":"Alice"}`))
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, http.StatusCreated, res.StatusCode)

			res, err = http.Get(server.URL + "/api/status")
			require.NoError(t, err)
			body, _ := io.ReadAll(res.Body)
			res.Body.Close()
			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Contains(t, string(body), `"storage": "`+storage+`"`)

			res, err = http.Get(server.URL + "/metrics")
			require.NoError(t, err)
			body, _ = io.ReadAll(res.Body)
			res.Body.Close()
			assert.Contains(t, string(body), `cookbookclub_operations_total{operation="InitClub",outcome="ok"} 1`)
		})
	}
}
