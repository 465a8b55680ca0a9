package cache

// schemaSQL defines the SQLite schema for the cache database.
// Tables:
//   - extractions: the declarations extracted from each file, keyed by path
//     and valid while the file's content hash matches
const schemaSQL = `
CREATE TABLE IF NOT EXISTS extractions (
    file_path TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    language TEXT NOT NULL,
    declarations_json TEXT NOT NULL,
    declaration_count INTEGER NOT NULL DEFAULT 0,
    extracted_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_extractions_hash ON extractions(content_hash);
`

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
