package state

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the database-backed alternative to FileStore, for
// deployments where the digest shares a volume with other tooling that
// already speaks SQL. The seq column preserves insertion order so the
// eviction bound stays meaningful.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS published_keys (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	key TEXT NOT NULL UNIQUE,
	sent_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init state schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM published_keys ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return keys, nil
}

// Save replaces the stored document with the given ordered list.
func (s *SQLiteStore) Save(keys []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM published_keys`); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO published_keys (key) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer stmt.Close()
	for _, k := range keys {
		if _, err := stmt.Exec(k); err != nil {
			return fmt.Errorf("insert state key: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
