package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/toolness/getdocs2ts/internal/extract"
)

// Entry describes one cached extraction.
type Entry struct {
	FilePath         string
	ContentHash      string
	Language         string
	DeclarationCount int
	ExtractedAt      time.Time
}

// Get returns the cached declarations for path when they were extracted from
// content with the given hash. ok is false on a miss or a stale entry.
func (c *Cache) Get(path, hash string) (decls []*extract.Declaration, ok bool, err error) {
	var storedHash, payload string
	err = c.db.QueryRow(
		"SELECT content_hash, declarations_json FROM extractions WHERE file_path = ?",
		path,
	).Scan(&storedHash, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get extraction %s: %w", path, err)
	}
	if storedHash != hash {
		return nil, false, nil
	}

	if err := json.Unmarshal([]byte(payload), &decls); err != nil {
		return nil, false, fmt.Errorf("decode extraction %s: %w", path, err)
	}
	return decls, true, nil
}

// Put stores the declarations extracted from path at the given content hash,
// replacing any previous entry.
func (c *Cache) Put(path, hash, language string, decls []*extract.Declaration) error {
	if decls == nil {
		decls = []*extract.Declaration{}
	}
	payload, err := json.Marshal(decls)
	if err != nil {
		return fmt.Errorf("encode extraction %s: %w", path, err)
	}

	var count int
	extract.Walk(decls, func(*extract.Declaration, int) { count++ })

	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO extractions
			(file_path, content_hash, language, declarations_json, declaration_count, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		path, hash, language, string(payload), count, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put extraction %s: %w", path, err)
	}
	return nil
}

// Delete removes the entry for path.
func (c *Cache) Delete(path string) error {
	_, err := c.db.Exec("DELETE FROM extractions WHERE file_path = ?", path)
	if err != nil {
		return fmt.Errorf("delete extraction %s: %w", path, err)
	}
	return nil
}

// Entries returns all cache entries ordered by path.
func (c *Cache) Entries() ([]Entry, error) {
	rows, err := c.db.Query(`
		SELECT file_path, content_hash, language, declaration_count, extracted_at
		FROM extractions ORDER BY file_path`)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var extractedAt string
		if err := rows.Scan(&entry.FilePath, &entry.ContentHash, &entry.Language,
			&entry.DeclarationCount, &extractedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.ExtractedAt, _ = time.Parse(time.RFC3339, extractedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// PruneStaleEntries removes entries for files no longer in the provided set.
func (c *Cache) PruneStaleEntries(validPaths map[string]bool) (int, error) {
	entries, err := c.Entries()
	if err != nil {
		return 0, err
	}

	var pruned int
	for _, entry := range entries {
		if !validPaths[entry.FilePath] {
			if err := c.Delete(entry.FilePath); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
