package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redditwatch/api/data"
	"github.com/redditwatch/api/enums"
)

type CursorRepo struct {
	db *sqlx.DB
}

func NewCursorRepo(db *sqlx.DB) *CursorRepo {
	return &CursorRepo{db}
}

// Ensure creates the per-kind cursor rows if missing. Safe to run on
// every startup.
func (r *CursorRepo) Ensure(ctx context.Context) error {
	for _, kind := range enums.Kinds {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO fetch_cursors (kind) VALUES ($1) ON CONFLICT (kind) DO NOTHING`, kind)
		if err != nil {
			return fmt.Errorf("ensure cursor %s: %w", kind, err)
		}
	}
	return nil
}

func (r *CursorRepo) Get(ctx context.Context, kind enums.Kind) (data.Cursor, error) {
	var cursor data.Cursor
	err := r.db.GetContext(ctx, &cursor,
		`SELECT kind, last_seen_id, empty_fetch_count, updated_at FROM fetch_cursors WHERE kind = $1`, kind)
	if err != nil {
		return data.Cursor{}, fmt.Errorf("get cursor %s: %w", kind, err)
	}
	return cursor, nil
}

// RecordFetch stores the newest fullname seen and zeroes the empty
// counter in one statement.
func (r *CursorRepo) RecordFetch(ctx context.Context, kind enums.Kind, newestID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE fetch_cursors
		SET last_seen_id = $2, empty_fetch_count = 0, updated_at = now()
		WHERE kind = $1`, kind, newestID)
	if err != nil {
		return fmt.Errorf("record fetch %s: %w", kind, err)
	}
	return nil
}

// RecordEmpty bumps the consecutive empty counter. When the counter
// reaches threshold the stored fullname is nulled and the counter reset,
// forcing the next fetch to start from the feed head again. Returns true
// when that stale reset happened. Single atomic statement; the scheduler
// guarantees one writer per kind.
func (r *CursorRepo) RecordEmpty(ctx context.Context, kind enums.Kind, threshold int) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		UPDATE fetch_cursors
		SET empty_fetch_count = CASE WHEN empty_fetch_count + 1 >= $2 THEN 0 ELSE empty_fetch_count + 1 END,
		    last_seen_id = CASE WHEN empty_fetch_count + 1 >= $2 THEN NULL ELSE last_seen_id END,
		    updated_at = now()
		WHERE kind = $1
		RETURNING empty_fetch_count`, kind, threshold).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("record empty %s: %w", kind, err)
	}
	return count == 0, nil
}

// Reset clears both cursors. Used by the administrative bulk reset.
func (r *CursorRepo) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE fetch_cursors SET last_seen_id = NULL, empty_fetch_count = 0, updated_at = now()`)
	if err != nil {
		return fmt.Errorf("reset cursors: %w", err)
	}
	return nil
}
