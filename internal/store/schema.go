package store

// schemaSQL defines the SQLite schema for the store database.
// Tables:
//   - inventory: imported inventory rows in file order; NULL marks a missing value
//   - bom: imported bill-of-materials rows in file order
//   - imports: one row per table replacement, newest last
const schemaSQL = `
CREATE TABLE IF NOT EXISTS inventory (
    seq INTEGER PRIMARY KEY,
    item TEXT NOT NULL,
    location TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    current REAL,
    target REAL
);

CREATE TABLE IF NOT EXISTS bom (
    seq INTEGER PRIMARY KEY,
    parent TEXT NOT NULL,
    child TEXT NOT NULL,
    site TEXT NOT NULL DEFAULT '',
    ratio REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS imports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    source TEXT NOT NULL,
    rows INTEGER NOT NULL,
    imported_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_inventory_identity ON inventory(item, location);
CREATE INDEX IF NOT EXISTS idx_bom_site ON bom(site);
`

// initSchema creates the database tables and indexes if they don't exist.
func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
