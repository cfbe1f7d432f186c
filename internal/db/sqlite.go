// Package db opens the SQLite run ledger and applies its migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// SQLite DSN parameters.
const (
	defaultBusyTimeout = "5000" // 5 seconds
	defaultSynchronous = "NORMAL"
	defaultJournalMode = "WAL"
)

// Mode selects how a pool is tuned.
type Mode string

// Pool modes.
const (
	// ModeWrite opens a single-connection pool that takes the write lock at
	// BEGIN.
	ModeWrite Mode = "write"
	// ModeRead opens a pool of concurrent readers.
	ModeRead Mode = "read"
)

// OpenSQLite opens a *sql.DB pool for the SQLite file at path.
//
// Write pools hold one connection and use _txlock=immediate; read pools hold
// maxOpen connections (0 means 4). Both use WAL, busy_timeout=5000ms,
// synchronous=NORMAL and foreign_keys=on.
func OpenSQLite(path string, mode Mode, maxOpen int) (*sql.DB, error) {
	if mode != ModeRead && mode != ModeWrite {
		return nil, fmt.Errorf("invalid SQLite mode %q: must be %q or %q", mode, ModeRead, ModeWrite)
	}

	db, err := sql.Open("sqlite3", buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	if mode == ModeWrite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		if maxOpen <= 0 {
			maxOpen = 4
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}
	return db, nil
}

// OpenSQLitePair opens a write pool and a read pool on the same file.
// readMaxOpen controls the read pool size (0 defaults to 4).
func OpenSQLitePair(path string, readMaxOpen int) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = OpenSQLite(path, ModeWrite, 0)
	if err != nil {
		return nil, nil, err
	}
	readDB, err = OpenSQLite(path, ModeRead, readMaxOpen)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}
	return writeDB, readDB, nil
}

// Ledger is an open, migrated run ledger.
type Ledger struct {
	Write *sql.DB
	Read  *sql.DB
}

// OpenLedger opens the ledger at path and applies pending migrations.
func OpenLedger(ctx context.Context, path string) (*Ledger, error) {
	writeDB, readDB, err := OpenSQLitePair(path, 0)
	if err != nil {
		return nil, err
	}
	l := &Ledger{Write: writeDB, Read: readDB}
	if err := RunMigrations(ctx, writeDB); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("migrate ledger %s: %w", path, err)
	}
	return l, nil
}

// Close closes both pools.
func (l *Ledger) Close() error {
	readErr := l.Read.Close()
	if err := l.Write.Close(); err != nil {
		return err
	}
	return readErr
}

func buildDSN(path string, mode Mode) string {
	params := url.Values{}
	params.Set("_journal_mode", defaultJournalMode)
	params.Set("_busy_timeout", defaultBusyTimeout)
	params.Set("_synchronous", defaultSynchronous)
	params.Set("_foreign_keys", "on")
	if mode == ModeWrite {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
