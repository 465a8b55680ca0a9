// Package cache provides SQLite-backed caching of extraction results.
// The cache is stored in .getdocs/cache.db; an entry is reused only while the
// content hash of its file is unchanged.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the name of the cache database inside the config directory.
const FileName = "cache.db"

// HashLength is the number of hex characters kept from a content hash.
const HashLength = 16

// Cache manages the .getdocs/cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in the specified directory.
// It initializes the schema if the database is new.
func Open(dir string) (*Cache, error) {
	dbPath := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// Extraction workers share the handle; one connection keeps writers
	// from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes all cached extractions.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM extractions")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Stats returns cache statistics.
type Stats struct {
	Files        int64 `yaml:"files" json:"files"`
	Declarations int64 `yaml:"declarations" json:"declarations"`
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats
	err := c.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(declaration_count), 0) FROM extractions",
	).Scan(&stats.Files, &stats.Declarations)
	if err != nil {
		return nil, fmt.Errorf("count extractions: %w", err)
	}
	return &stats, nil
}

// ContentHash computes the hash of file content used to validate entries.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:HashLength]
}
