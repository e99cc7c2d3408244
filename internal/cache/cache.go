// Package cache memoizes per-function decompilation results across runs.
// It is optional infrastructure: a whole-module decompile only reads
// shared immutable input per function, so repeated decompiles of the same
// module (e.g. while iterating on a downstream pretty-printer) can skip
// functions already solved in a prior run. Nothing here changes
// decompilation semantics; it only decides whether a function's pass is
// re-run.
package cache

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is a sqlite-backed memo of decompiled function bodies, keyed by
// the module's content hash and the function's index. Using pure-Go
// modernc.org/sqlite (no cgo) keeps this library embeddable in any
// consumer without a C toolchain requirement.
type Store struct {
	db *sql.DB
}

// Open creates or attaches to a cache database at path (use ":memory:"
// for a process-local cache with no persistence).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS decompiled_functions (
	module_hash  TEXT NOT NULL,
	fn_index     INTEGER NOT NULL,
	session_id   TEXT NOT NULL,
	statements   BLOB NOT NULL,
	PRIMARY KEY (module_hash, fn_index)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the previously cached serialized statement tree for
// (moduleHash, fnIndex), if present.
func (s *Store) Get(moduleHash string, fnIndex int) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow(
		`SELECT statements FROM decompiled_functions WHERE module_hash = ? AND fn_index = ?`,
		moduleHash, fnIndex,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get: %w", err)
	}
	return data, true, nil
}

// Put stores the serialized statement tree for (moduleHash, fnIndex),
// tagging the row with session, the identity of the run that produced it.
func (s *Store) Put(moduleHash string, fnIndex int, session uuid.UUID, statements []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO decompiled_functions (module_hash, fn_index, session_id, statements)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(module_hash, fn_index) DO UPDATE SET session_id = excluded.session_id, statements = excluded.statements`,
		moduleHash, fnIndex, session.String(), statements,
	)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// NewSession mints a fresh run identity for a whole-module decompile pass.
func NewSession() uuid.UUID { return uuid.New() }
