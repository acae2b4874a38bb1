package db

import (
	"context"
	"database/sql"
	"fmt"
)

const auditMigration = `
CREATE TABLE IF NOT EXISTS auth_events (
    id uuid PRIMARY KEY,
    event text NOT NULL,
    user_id text,
    email text,
    mode text NOT NULL,
    occurred_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS auth_events_user_id_idx
ON auth_events (user_id);

CREATE INDEX IF NOT EXISTS auth_events_occurred_at_idx
ON auth_events (occurred_at);
`

// Migrate creates the audit schema. Safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, auditMigration); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
