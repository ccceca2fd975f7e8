package corpus

import "database/sql"

// SetOpenDB swaps the database opener and returns a func restoring it.
// This file only compiles during `go test`.
func SetOpenDB(fn func(driver, dsn string) (*sql.DB, error)) func() {
	prev := openDB
	openDB = fn
	return func() { openDB = prev }
}
