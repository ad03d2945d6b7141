package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/football-manager-sim/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, int64(42), cfg.Simulation.DefaultSeed)
	assert.InDelta(t, 0.10, cfg.Simulation.EventChance, 1e-9)
}

func TestLoad_FromYAMLAndEnv(t *testing.T) {
	yaml := `
app:
  name: football-manager-sim
  version: 0.2.0
  env: test
  port: 18080

logger:
  level: info
  format: json
  time_format: rfc3339

store:
  driver: postgres

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable

simulation:
  event_chance: 0.2
  weights:
    goal: 0.05
`
	path := writeTempConfig(t, yaml)
	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DB", "testdb")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.App.Port)
	assert.Equal(t, "testuser", cfg.Postgres.User)
	assert.Equal(t, "testdb", cfg.Postgres.DBName)
	assert.Equal(t, "127.0.0.1", cfg.Postgres.Host)
	assert.InDelta(t, 0.2, cfg.Simulation.EventChance, 1e-9)
	assert.InDelta(t, 0.05, cfg.Simulation.Weights.Goal, 1e-9)
	assert.InDelta(t, 0.04, cfg.Simulation.Weights.YellowCard, 1e-9, "unset weights keep their defaults")
	assert.Equal(t, "mock", cfg.SoftState.Provider)
}

func TestLoad_PostgresWithoutCredentialsFails(t *testing.T) {
	path := writeTempConfig(t, `
store:
  driver: postgres
`)
	t.Setenv("APP_POSTGRES_USER", "")
	t.Setenv("APP_POSTGRES_PASSWORD", "")
	t.Setenv("APP_POSTGRES_DB", "")

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown driver":   "store:\n  driver: redis\n",
		"chance above one": "simulation:\n  event_chance: 1.5\n",
		"unknown provider": "softstate:\n  provider: oracle\n",
		"gemini no key":    "softstate:\n  provider: gemini\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_SOFTSTATE_API_KEY", "")
			_, err := config.Load(writeTempConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("APP_STORE_DRIVER", "file")
	t.Setenv("APP_STORE_PATH", "/tmp/x.jsonl")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DriverFile, cfg.Store.Driver)
	assert.Equal(t, "/tmp/x.jsonl", cfg.Store.Path)
}
