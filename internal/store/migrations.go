package store

import (
	"context"
	"fmt"
)

// migrate creates the catalog schema.
func (s *SQLite) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS assets (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL,
			name         TEXT NOT NULL,
			organization TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL DEFAULT 'active',
			severity     TEXT NOT NULL DEFAULT 'info',
			updated_at   DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_assets_kind ON assets(kind);
		CREATE INDEX IF NOT EXISTS idx_assets_kind_name ON assets(kind, name);
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating assets table: %w", err)
	}

	return nil
}
