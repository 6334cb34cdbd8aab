// Package store provides SQLite-backed persistence for imported inventory and
// bill-of-materials tables. The database lives in .scmap/scmap.db by default,
// so graph, render and serve can rebuild the network without re-reading CSVs.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/supplynet/scmap/internal/inventory"
	_ "modernc.org/sqlite"
)

// ErrEmpty is returned by Load when no inventory has been imported.
var ErrEmpty = errors.New("store has no inventory; run scmap import first")

// Import kinds recorded in the imports table.
const (
	KindInventory = "inventory"
	KindBOM       = "bom"
)

// Store manages the SQLite database holding imported tables.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the store database at path, creating parent
// directories as needed. It initializes the schema if the database is new.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	// Enable WAL mode so serve can read while import writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, dbPath: path}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// ReplaceInventory swaps the inventory table for records in one transaction
// and logs the import under source.
func (s *Store) ReplaceInventory(records []inventory.Record, source string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin inventory import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM inventory"); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO inventory (seq, item, location, category, current, target)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare inventory insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		current := sql.NullFloat64{Float64: r.Current, Valid: r.HasCurrent}
		target := sql.NullFloat64{Float64: r.Target, Valid: r.HasTarget}
		if _, err := stmt.Exec(i, r.Item, r.Location, r.Category, current, target); err != nil {
			return fmt.Errorf("insert inventory row %d: %w", i, err)
		}
	}

	if err := logImport(tx, KindInventory, source, len(records)); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceBOM swaps the bom table for boms in one transaction and logs the
// import under source.
func (s *Store) ReplaceBOM(boms []inventory.BOM, source string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin bom import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM bom"); err != nil {
		return fmt.Errorf("clear bom: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO bom (seq, parent, child, site, ratio)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare bom insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range boms {
		if _, err := stmt.Exec(i, b.Parent, b.Child, b.Site, b.Ratio); err != nil {
			return fmt.Errorf("insert bom row %d: %w", i, err)
		}
	}

	if err := logImport(tx, KindBOM, source, len(boms)); err != nil {
		return err
	}
	return tx.Commit()
}

func logImport(tx *sql.Tx, kind, source string, rows int) error {
	_, err := tx.Exec(`
		INSERT INTO imports (kind, source, rows, imported_at)
		VALUES (?, ?, ?, ?)`,
		kind, source, rows, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("log %s import: %w", kind, err)
	}
	return nil
}

// Records returns the inventory rows in import order.
func (s *Store) Records() ([]inventory.Record, error) {
	rows, err := s.db.Query(`
		SELECT item, location, category, current, target
		FROM inventory ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var records []inventory.Record
	for rows.Next() {
		var r inventory.Record
		var current, target sql.NullFloat64
		if err := rows.Scan(&r.Item, &r.Location, &r.Category, &current, &target); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		r.Current, r.HasCurrent = current.Float64, current.Valid
		r.Target, r.HasTarget = target.Float64, target.Valid
		records = append(records, r)
	}
	return records, rows.Err()
}

// BOMs returns the bill-of-materials rows in import order.
func (s *Store) BOMs() ([]inventory.BOM, error) {
	rows, err := s.db.Query(`
		SELECT parent, child, site, ratio
		FROM bom ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query bom: %w", err)
	}
	defer rows.Close()

	var boms []inventory.BOM
	for rows.Next() {
		var b inventory.BOM
		if err := rows.Scan(&b.Parent, &b.Child, &b.Site, &b.Ratio); err != nil {
			return nil, fmt.Errorf("scan bom: %w", err)
		}
		boms = append(boms, b)
	}
	return boms, rows.Err()
}

// Load returns both tables. It returns ErrEmpty when no inventory rows
// are stored; an empty BOM table is not an error.
func (s *Store) Load() ([]inventory.Record, []inventory.BOM, error) {
	records, err := s.Records()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, ErrEmpty
	}
	boms, err := s.BOMs()
	if err != nil {
		return nil, nil, err
	}
	return records, boms, nil
}

// Import describes one table replacement.
type Import struct {
	Kind       string    `json:"kind" yaml:"kind"`
	Source     string    `json:"source" yaml:"source"`
	Rows       int       `json:"rows" yaml:"rows"`
	ImportedAt time.Time `json:"imported_at" yaml:"imported_at"`
}

// LastImport returns the newest import of kind.
// Returns sql.ErrNoRows if the table was never imported.
func (s *Store) LastImport(kind string) (*Import, error) {
	var imp Import
	var at string
	err := s.db.QueryRow(`
		SELECT kind, source, rows, imported_at FROM imports
		WHERE kind = ? ORDER BY id DESC LIMIT 1`, kind).
		Scan(&imp.Kind, &imp.Source, &imp.Rows, &at)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get last %s import: %w", kind, err)
	}
	imp.ImportedAt, _ = time.Parse(time.RFC3339, at)
	return &imp, nil
}

// Stats holds store statistics.
type Stats struct {
	InventoryRows int64 `json:"inventory_rows" yaml:"inventory_rows"`
	BOMRows       int64 `json:"bom_rows" yaml:"bom_rows"`
	Imports       int64 `json:"imports" yaml:"imports"`
}

// GetStats returns statistics about the store contents.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats

	if err := s.db.QueryRow("SELECT COUNT(*) FROM inventory").Scan(&stats.InventoryRows); err != nil {
		return nil, fmt.Errorf("count inventory: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM bom").Scan(&stats.BOMRows); err != nil {
		return nil, fmt.Errorf("count bom: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM imports").Scan(&stats.Imports); err != nil {
		return nil, fmt.Errorf("count imports: %w", err)
	}

	return &stats, nil
}

// Clear removes all stored rows and the import log.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM inventory; DELETE FROM bom; DELETE FROM imports;")
	if err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	return nil
}
