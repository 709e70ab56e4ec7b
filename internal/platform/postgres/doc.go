// Package postgres provides a PostgreSQL implementation of
// store.SnapshotStore, for diaries shared by several server instances.
// It connects through the pgx database/sql driver and owns its schema
// through embedded goose migrations.
package postgres
