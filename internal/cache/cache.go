// Package cache implements lumo's content-addressed build cache: a source
// text's sha1 hash keys a stored copy of the module text Build produced for
// it, so re-running the same source skips both passes entirely (spec.md §5's
// determinism guarantee is what makes this sound — same source always
// produces the same module text).
package cache

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a sqlite-backed build cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS builds (
		hash TEXT PRIMARY KEY,
		module TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Hash returns the content-address Lookup/Store key for source.
func Hash(source string) string {
	sum := sha1.Sum([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached module text for sourceHash, if any.
func (s *Store) Lookup(sourceHash string) (module string, ok bool, err error) {
	row := s.db.QueryRow(`SELECT module FROM builds WHERE hash = ?`, sourceHash)
	if scanErr := row.Scan(&module); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache: lookup: %w", scanErr)
	}
	return module, true, nil
}

// Store records moduleText under sourceHash, overwriting any prior entry
// for the same source (a rebuild with the same source is expected to
// produce byte-identical output, so last-write is never a conflict).
func (s *Store) Store(sourceHash, moduleText string) error {
	_, err := s.db.Exec(
		`INSERT INTO builds (hash, module, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET module = excluded.module, created_at = excluded.created_at`,
		sourceHash, moduleText, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: store: %w", err)
	}
	return nil
}
