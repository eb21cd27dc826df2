package refdata

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// HierarchyEntry is one row of the ECOD classification: uid, short_id, the
// h-group (x.h), the t-group (x.h.t), and the full x.h.t.f path.
type HierarchyEntry struct {
	UID      string
	ShortID  string
	HGroup   string
	TGroup   string
	HTFPath  string
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY);

CREATE TABLE IF NOT EXISTS hierarchy (
	uid      TEXT PRIMARY KEY,
	short_id TEXT NOT NULL,
	h_group  TEXT NOT NULL,
	t_group  TEXT NOT NULL,
	htf_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS template_length (
	uid    TEXT PRIMARY KEY,
	length INTEGER NOT NULL
);
`

// Build creates (or reuses) the SQLite reference database at dbPath and
// bulk-loads the hierarchy TSV (uid, short_id, x.h, h.t, x.h.t.f) and the
// template-length TSV (uid, length) into it. Build is idempotent: a
// database that already has rows is left untouched and the TSV paths may
// be empty. weightsDir/historyDir back the lazy per-template lookups.
func Build(dbPath, hierarchyTSV, lengthTSV, weightsDir, historyDir string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("refdata: open db for build: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("refdata: set WAL mode: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("refdata: create schema: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM hierarchy").Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("refdata: count hierarchy: %w", err)
	}
	if count == 0 && hierarchyTSV != "" {
		if err := loadHierarchyTSV(db, hierarchyTSV); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM template_length").Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("refdata: count template_length: %w", err)
	}
	if count == 0 && lengthTSV != "" {
		if err := loadLengthTSV(db, lengthTSV); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{
		db:         db,
		weightsDir: weightsDir,
		historyDir: historyDir,
		weights:    make(map[string]map[int]float64),
		history:    make(map[string]historyDist),
	}, nil
}

func loadHierarchyTSV(db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("refdata: open hierarchy tsv: %w", err)
	}
	defer f.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("refdata: begin hierarchy load tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO hierarchy(uid, short_id, h_group, t_group, htf_path) VALUES (?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("refdata: prepare hierarchy insert: %w", err)
	}
	defer stmt.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}
		htf := fields[4]
		hGroup := hGroupOf(htf)
		tGroup := tGroupOf(htf)
		if _, err := stmt.Exec(fields[0], fields[1], hGroup, tGroup, htf); err != nil {
			tx.Rollback()
			return fmt.Errorf("refdata: insert hierarchy row: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		tx.Rollback()
		return fmt.Errorf("refdata: scan hierarchy tsv: %w", err)
	}
	return tx.Commit()
}

// hGroupOf extracts the h-group (first two dotted components) from an
// x.h.t.f path.
func hGroupOf(htf string) string {
	parts := strings.Split(htf, ".")
	if len(parts) < 2 {
		return htf
	}
	return strings.Join(parts[:2], ".")
}

// tGroupOf extracts the t-group (first three dotted components).
func tGroupOf(htf string) string {
	parts := strings.Split(htf, ".")
	if len(parts) < 3 {
		return htf
	}
	return strings.Join(parts[:3], ".")
}

func loadLengthTSV(db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("refdata: open length tsv: %w", err)
	}
	defer f.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("refdata: begin length load tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO template_length(uid, length) VALUES (?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("refdata: prepare length insert: %w", err)
	}
	defer stmt.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		if _, err := stmt.Exec(fields[0], n); err != nil {
			tx.Rollback()
			return fmt.Errorf("refdata: insert length row: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		tx.Rollback()
		return fmt.Errorf("refdata: scan length tsv: %w", err)
	}
	return tx.Commit()
}

// Lookup returns the hierarchy entry for a template uid, if present.
func (s *Store) Lookup(uid string) (HierarchyEntry, bool, error) {
	row := s.db.QueryRow(`SELECT uid, short_id, h_group, t_group, htf_path FROM hierarchy WHERE uid = ?`, uid)
	var e HierarchyEntry
	if err := row.Scan(&e.UID, &e.ShortID, &e.HGroup, &e.TGroup, &e.HTFPath); err != nil {
		if err == sql.ErrNoRows {
			return HierarchyEntry{}, false, nil
		}
		return HierarchyEntry{}, false, fmt.Errorf("refdata: lookup %s: %w", uid, err)
	}
	return e, true, nil
}

// TemplateLength returns the template's known length, or (0, false) if unknown.
func (s *Store) TemplateLength(uid string) (int, bool, error) {
	row := s.db.QueryRow(`SELECT length FROM template_length WHERE uid = ?`, uid)
	var n int
	if err := row.Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("refdata: length %s: %w", uid, err)
	}
	return n, true, nil
}
