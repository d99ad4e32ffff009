package server

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// OpenDB opens the SQLite report log. WAL mode lets agent ingests append
// concurrently with dashboard reads. The pragmas ride on the DSN so every
// pooled connection carries them, not just the first.
func OpenDB(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
