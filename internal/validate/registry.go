package validate

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Registry errors.
var (
	// ErrHashMissing means no reference hash has been recorded for the
	// (file, time_shift) pair.
	ErrHashMissing = errors.New("no reference hash recorded")

	// ErrHashMismatch means the decoded hash differs from the recorded
	// reference: the two implementations disagree on this file.
	ErrHashMismatch = errors.New("hash mismatch against reference")
)

// Registry stores reference hashes in a local SQLite database, keyed by
// file name and time-shift setting. Reference entries are produced once
// from a trusted decoder and checked on every conformance run.
type Registry struct {
	db *sql.DB
}

const registrySchema = `
CREATE TABLE IF NOT EXISTS conformance_hashes (
	file       TEXT    NOT NULL,
	time_shift INTEGER NOT NULL,
	hash       TEXT    NOT NULL,
	PRIMARY KEY (file, time_shift)
);`

// OpenRegistry opens (creating if needed) the registry database at path.
func OpenRegistry(path string) (*Registry, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hash registry: %w", err)
	}
	if _, err := db.Exec(registrySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize hash registry: %w", err)
	}
	return &Registry{db: db}, nil
}

// Record upserts the reference hash for (file, timeShift).
func (r *Registry) Record(file string, timeShift bool, hash uint64) error {
	_, err := r.db.Exec(
		`INSERT INTO conformance_hashes (file, time_shift, hash) VALUES (?, ?, ?)
		 ON CONFLICT(file, time_shift) DO UPDATE SET hash = excluded.hash`,
		file, boolToInt(timeShift), formatHash(hash),
	)
	if err != nil {
		return fmt.Errorf("failed to record reference hash: %w", err)
	}
	return nil
}

// Check compares hash against the recorded reference for (file,
// timeShift). It returns ErrHashMissing when no reference exists and
// ErrHashMismatch when the values differ.
func (r *Registry) Check(file string, timeShift bool, hash uint64) error {
	var stored string
	err := r.db.QueryRow(
		`SELECT hash FROM conformance_hashes WHERE file = ? AND time_shift = ?`,
		file, boolToInt(timeShift),
	).Scan(&stored)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s (time_shift=%v)", ErrHashMissing, file, timeShift)
	}
	if err != nil {
		return fmt.Errorf("failed to query hash registry: %w", err)
	}

	if got := formatHash(hash); got != stored {
		return fmt.Errorf("%w: %s (time_shift=%v): got %s, want %s",
			ErrHashMismatch, file, timeShift, got, stored)
	}
	return nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

func formatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
