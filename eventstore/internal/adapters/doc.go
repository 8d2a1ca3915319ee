// Package adapters puts pgxpool.Pool, sql.DB and sqlx.DB behind one small interface,
// so the SQL engines run the same code on each of them.
package adapters
