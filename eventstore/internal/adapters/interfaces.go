package adapters

import "context"

// DBAdapter is what the engines need from a database handle.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)

	// ExecSerializable runs query in its own SERIALIZABLE transaction and commits it.
	ExecSerializable(ctx context.Context, query string) (DBResult, error)
}

// DBRows is a cursor over query results.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult reports the outcome of an Exec.
type DBResult interface {
	RowsAffected() (int64, error)
}
