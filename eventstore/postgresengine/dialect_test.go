package postgresengine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func Test_PostgresDialect_IsSerializationFailure(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "pgx serialization failure", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "pgx deadlock", err: &pgconn.PgError{Code: "40P01"}, want: true},
		{name: "lib/pq serialization failure", err: &pq.Error{Code: "40001"}, want: true},
		{name: "wrapped on commit", err: fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "lib/pq syntax error", err: &pq.Error{Code: "42601"}, want: false},
		{name: "plain error", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, postgresDialect{}.IsSerializationFailure(tc.err))
		})
	}
}

func Test_PostgresDialect_RequiresSerializableAppends(t *testing.T) {
	assert.True(t, postgresDialect{}.SerializableAppends())
}
