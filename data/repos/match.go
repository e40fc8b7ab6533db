package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redditwatch/api/data"
)

type MatchRepo struct {
	db *sqlx.DB
}

func NewMatchRepo(db *sqlx.DB) *MatchRepo {
	return &MatchRepo{db}
}

// CreateMatches inserts match rows, skipping any (campaign, keyword,
// item) triple already recorded. Returns the number actually created so
// re-scans report zero instead of duplicating.
func (r *MatchRepo) CreateMatches(ctx context.Context, matches []data.Match) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO campaign_matches (campaign_id, keyword_id, post_id, comment_id, match_text, language)
		VALUES (:campaign_id, :keyword_id, :post_id, :comment_id, :match_text, :language)
		ON CONFLICT DO NOTHING`

	res, err := r.db.NamedExecContext(ctx, query, matches)
	if err != nil {
		return 0, fmt.Errorf("create matches: %w", err)
	}

	created, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("create matches rows affected: %w", err)
	}
	return int(created), nil
}

// MatchFilter narrows the campaign detail listing.
type MatchFilter struct {
	KeywordID int
	Type      string // "post", "comment", or empty for both
	Subreddit string
	Limit     int
	Offset    int
}

// MatchRow is a match joined with enough item context for display.
type MatchRow struct {
	data.Match
	Subreddit string `db:"subreddit"`
	Author    string `db:"author"`
	Title     string `db:"title"`
	Permalink string `db:"permalink"`
	Keyword   string `db:"keyword"`
}

func (r *MatchRepo) GetMatches(ctx context.Context, campaignID int, f MatchFilter) ([]MatchRow, int, error) {
	where := `m.campaign_id = $1`
	args := []interface{}{campaignID}

	if f.KeywordID > 0 {
		args = append(args, f.KeywordID)
		where += fmt.Sprintf(" AND m.keyword_id = $%d", len(args))
	}
	switch f.Type {
	case "post":
		where += " AND m.post_id IS NOT NULL"
	case "comment":
		where += " AND m.comment_id IS NOT NULL"
	}
	if f.Subreddit != "" {
		args = append(args, "%"+f.Subreddit+"%")
		where += fmt.Sprintf(" AND COALESCE(p.subreddit, c.subreddit) ILIKE $%d", len(args))
	}

	from := `
		FROM campaign_matches m
		JOIN keywords k ON k.id = m.keyword_id
		LEFT JOIN reddit_posts p ON p.id = m.post_id
		LEFT JOIN reddit_comments c ON c.id = m.comment_id
		WHERE ` + where

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) `+from, args...); err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	query := `
		SELECT m.id, m.campaign_id, m.keyword_id, m.post_id, m.comment_id,
		       m.match_text, m.language, m.created_at,
		       COALESCE(p.subreddit, c.subreddit, '') AS subreddit,
		       COALESCE(p.author, c.author, '') AS author,
		       COALESCE(p.title, '') AS title,
		       COALESCE(p.permalink, c.permalink, '') AS permalink,
		       k.name AS keyword
		` + from + `
		ORDER BY m.created_at DESC`

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rows []MatchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("get matches: %w", err)
	}

	return rows, total, nil
}
