package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps delivered links in a sent_links table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	version, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("Cache database ready", "path", path, "schema_version", version)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Set, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT link FROM sent_links`)
	if err != nil {
		return nil, fmt.Errorf("failed to load sent links: %w", err)
	}
	defer rows.Close()

	set := NewSet()
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("failed to scan sent link: %w", err)
		}
		set.Add(link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sent links: %w", err)
	}

	return set, nil
}

func (s *SQLiteStore) Record(ctx context.Context, links []string) error {
	lines := sanitize(links)
	if len(lines) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sent_links (link, sent_at) VALUES (?, ?) ON CONFLICT(link) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, link := range lines {
		if _, err := stmt.ExecContext(ctx, link, now); err != nil {
			return fmt.Errorf("failed to record link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sent links: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
