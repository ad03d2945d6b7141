package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/football-manager-sim/internal/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logger.LoggerConfig
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "production json",
			config: &logger.LoggerConfig{
				ServiceName: "sim", Env: "prod", Level: "info", TimeField: "timestamp", TimeFormat: "unix",
				Fields: map[string]any{"key": "value"},
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:        "unknown env",
			config:      &logger.LoggerConfig{Env: "wrong-env", Level: "debug"},
			expectError: true,
		},
		{
			name:        "unknown level",
			config:      &logger.LoggerConfig{Env: "prod", Level: "loud"},
			expectError: true,
		},
		{
			name:      "staging warn",
			config:    &logger.LoggerConfig{Env: "staging", Level: "warn", TimeFormat: "unix_ms"},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name:      "dev console info",
			config:    &logger.LoggerConfig{Env: "dev", Level: "info"},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:      "prod error to stderr",
			config:    &logger.LoggerConfig{Env: "prod", Level: "error", OutputTarget: "stderr"},
			wantLevel: zerolog.ErrorLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := logger.New(tc.config)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLevel, zerolog.GlobalLevel())
		})
	}

	t.Run("dev debug tees into the debug file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := logger.New(&logger.LoggerConfig{Env: "dev", Level: "debug"})
		require.NoError(t, err)
		_, statErr := os.Stat("logs/debug.log")
		assert.NoError(t, statErr)
	})

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func TestDefaultsFillServiceName(t *testing.T) {
	cfg := &logger.LoggerConfig{}
	_, err := logger.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "football-manager-sim", cfg.ServiceName)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "json", cfg.Format)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := logger.Component(zerolog.New(&buf), "engine", "match")
	l.Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "engine", line["module"])
	assert.Equal(t, "match", line["component"])
}
