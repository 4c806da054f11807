// Package localstore persists small string values (session flags, cached
// counters) in the client's SQLite database.
//
// The table is created by the goose migrations in internal/client/migrations:
//
//	local_storage(key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TIMESTAMP)
package localstore
