package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/library-circulation/internal/config" //nolint:revive
)

func Test_Load_Defaults(t *testing.T) {
	// arrange
	v, err := NewViper("", "")
	require.NoError(t, err)

	// act
	cfg, err := Load(v)

	// assert
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "events", cfg.StoreTable)
	assert.Equal(t, 6, cfg.RetryMaxAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 30*24*time.Hour, cfg.LoanDurationsTable().For("book"))
	assert.Empty(t, cfg.HTTPCORSOrigins)
}

func Test_Load_FromEnvironment(t *testing.T) {
	// arrange
	t.Setenv("CIRCULATION_STORE_DRIVER", "postgres")
	t.Setenv("CIRCULATION_STORE_DSN", "postgres://u:p@localhost:5432/circulation")
	t.Setenv("CIRCULATION_STORE_ADAPTER", "sqlx")
	t.Setenv("CIRCULATION_LOAN_DURATIONS", "dvd=7, book=28")
	t.Setenv("CIRCULATION_HTTP_CORS_ORIGINS", "https://opac.example.org, https://staff.example.org")
	t.Setenv("CIRCULATION_RETRY_BASE_DELAY", "25ms")

	v, err := NewViper("", "")
	require.NoError(t, err)

	// act
	cfg, err := Load(v)

	// assert
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, AdapterSQLX, cfg.StoreAdapter)
	assert.Equal(t, 7*24*time.Hour, cfg.LoanDurationsTable().For("dvd"))
	assert.Equal(t, 28*24*time.Hour, cfg.LoanDurationsTable().For("book"))
	assert.Equal(t, 30*24*time.Hour, cfg.LoanDurationsTable().For("map"))
	assert.Equal(t, []string{"https://opac.example.org", "https://staff.example.org"}, cfg.HTTPCORSOrigins)
	assert.Equal(t, 25*time.Millisecond, cfg.RetryBaseDelay)
}

func Test_Load_FromFiles(t *testing.T) {
	// arrange
	dir := t.TempDir()
	configFile := filepath.Join(dir, "circulation.yaml")
	envFile := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(configFile, []byte(`
store:
  table: circulation_events
loan:
  default_days: 21
  durations:
    magazine: 7
`), 0o600))
	require.NoError(t, os.WriteFile(envFile, []byte("CIRCULATION_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CIRCULATION_LOG_LEVEL") })

	v, err := NewViper(envFile, configFile)
	require.NoError(t, err)

	// act
	cfg, err := Load(v)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "circulation_events", cfg.StoreTable)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 21*24*time.Hour, cfg.LoanDurationsTable().For("book"))
	assert.Equal(t, 7*24*time.Hour, cfg.LoanDurationsTable().For("magazine"))
}

func Test_Load_Rejects_Invalid_Settings(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown driver", key: "CIRCULATION_STORE_DRIVER", value: "mysql"},
		{name: "unknown log level", key: "CIRCULATION_LOG_LEVEL", value: "verbose"},
		{name: "zero attempts", key: "CIRCULATION_RETRY_MAX_ATTEMPTS", value: "0"},
		{name: "malformed durations", key: "CIRCULATION_LOAN_DURATIONS", value: "book:28"},
		{name: "replica without postgres", key: "CIRCULATION_STORE_REPLICA_DSN", value: "postgres://replica"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			t.Setenv(tc.key, tc.value)
			v, err := NewViper("", "")
			require.NoError(t, err)

			// act
			_, err = Load(v)

			// assert
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func Test_NewViper_Missing_Config_File(t *testing.T) {
	_, err := NewViper("", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrReadingConfigFailed)
}
