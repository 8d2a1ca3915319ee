package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/internal/config"
	. "github.com/AntonStoeckl/library-circulation/internal/storage" //nolint:revive
	"github.com/AntonStoeckl/library-circulation/testutil/spies"
)

func givenConfig(t *testing.T, driver, dsn string) config.Config {
	t.Helper()

	t.Setenv("CIRCULATION_STORE_DRIVER", driver)
	t.Setenv("CIRCULATION_STORE_DSN", dsn)
	t.Setenv("CIRCULATION_STORE_TABLE", "circulation_events")

	v, err := config.NewViper("", "")
	require.NoError(t, err)

	cfg, err := config.Load(v)
	require.NoError(t, err)

	return cfg
}

func Test_Open_SQLite(t *testing.T) {
	// arrange
	ctx := context.Background()
	cfg := givenConfig(t, config.DriverSQLite, filepath.Join(t.TempDir(), "events.db"))
	metricsSpy := spies.NewMetricsCollectorSpy()

	// act
	store, err := Open(ctx, cfg, Observability{Metrics: metricsSpy})

	// assert
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, config.DriverSQLite, store.Driver)
	assert.Equal(t, "circulation_events", store.TableName())
	require.NoError(t, store.CreateSchema(ctx))

	filter := eventstore.BuildEventFilter().Matching().AnyEventTypeOf("ItemLost").Finalize()
	event, err := eventstore.BuildStorableEventWithEmptyMetadata("ItemLost", time.Now(), []byte(`{"ItemID":"i-1"}`))
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, filter, 0, event))
	assert.NotEmpty(t, metricsSpy.Records(eventstore.MetricAppendDuration))
}

func Test_PGXPoolConfig_Applies_Defaults(t *testing.T) {
	// act
	poolConfig, err := PGXPoolConfig("postgres://u:p@localhost:5432/circulation")

	// assert
	require.NoError(t, err)
	assert.Equal(t, int32(8), poolConfig.MaxConns)
	assert.Equal(t, 5*time.Second, poolConfig.ConnConfig.ConnectTimeout)
}

func Test_PGXPoolConfig_Rejects_Malformed_DSN(t *testing.T) {
	_, err := PGXPoolConfig("postgres://u:p@localhost:notaport/db")
	assert.ErrorIs(t, err, ErrOpeningStoreFailed)
}

func Test_Open_Postgres(t *testing.T) {
	dsn := os.Getenv("CIRCULATION_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CIRCULATION_TEST_POSTGRES_DSN is not set")
	}

	for _, adapter := range []string{config.AdapterPGX, config.AdapterSQL, config.AdapterSQLX} {
		t.Run(adapter, func(t *testing.T) {
			// arrange
			t.Setenv("CIRCULATION_STORE_ADAPTER", adapter)
			cfg := givenConfig(t, config.DriverPostgres, dsn)

			// act
			store, err := Open(context.Background(), cfg, Observability{})

			// assert
			require.NoError(t, err)
			defer store.Close()
			assert.Equal(t, adapter, store.Adapter)
			assert.NoError(t, store.CreateSchema(context.Background()))
		})
	}
}
