package journal

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion tracks the journal layout via SQLite's user_version pragma.
// Bump on any change to schema.sql; older databases must be rebuilt.
const schemaVersion = 1

// ErrSchemaMismatch reports a journal database created by an incompatible release.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read journal schema version: %w", err)
	}

	switch version {
	case 0:
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("apply journal schema: %w", err)
		}
		// PRAGMA takes no bind parameters; schemaVersion is a trusted constant.
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("record journal schema version: %w", err)
		}
		return nil
	case schemaVersion:
		return nil
	default:
		return fmt.Errorf("%w: database at version %d, this build expects %d (delete the journal database to rebuild it)",
			ErrSchemaMismatch, version, schemaVersion)
	}
}
