// Package refdata loads the reference data this pipeline classifies
// against: the ECOD hierarchy, template lengths, per-template position
// weights, and per-template historical score distributions. The hierarchy
// and length tables are eager (≈900k rows) and backed by an embedded
// SQLite database (adapted from ehrlich-b-wingthing's internal/store,
// github.com/modernc.org/sqlite) so a batch of chains shares one read-only
// handle instead of re-parsing flat files per chain. Weights and history
// are lazy, loaded from flat files on first access and cached in memory.
package refdata

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is the shared, read-only-after-Build reference data handle for a
// batch. It is safe for concurrent use by multiple chain drivers.
type Store struct {
	db *sql.DB

	weightsDir string
	historyDir string

	mu       sync.RWMutex
	weights  map[string]map[int]float64
	history  map[string]historyDist
}

// Open connects to an already-built SQLite reference database at dbPath,
// plus the flat-file directories backing lazy weight/history lookups.
func Open(dbPath, weightsDir, historyDir string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("refdata: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("refdata: set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA query_only=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("refdata: set query_only: %w", err)
	}
	return &Store{
		db:         db,
		weightsDir: weightsDir,
		historyDir: historyDir,
		weights:    make(map[string]map[int]float64),
		history:    make(map[string]historyDist),
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
