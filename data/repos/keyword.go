package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redditwatch/api/data"
)

type KeywordRepo struct {
	db *sqlx.DB
}

func NewKeywordRepo(db *sqlx.DB) *KeywordRepo {
	return &KeywordRepo{db}
}

// CreateKeyword inserts a keyword, returning the existing row's id when
// the (campaign, name) pair is already taken.
func (r *KeywordRepo) CreateKeyword(ctx context.Context, keyword data.Keyword) (int, error) {
	query := `
		INSERT INTO keywords (campaign_id, name, description)
		VALUES (:campaign_id, :name, :description)
		ON CONFLICT (campaign_id, name) DO NOTHING
		RETURNING id`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, keyword)
	if err != nil {
		return 0, fmt.Errorf("create keyword: %w", err)
	}
	defer rows.Close()

	var id int
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan returned id: %w", err)
		}
		return id, nil
	}

	err = r.db.GetContext(ctx, &id,
		`SELECT id FROM keywords WHERE campaign_id = $1 AND name = $2`, keyword.CampaignID, keyword.Name)
	if err != nil {
		return 0, fmt.Errorf("get existing keyword id: %w", err)
	}

	return id, nil
}

func (r *KeywordRepo) GetKeywordByID(ctx context.Context, id int) (*data.Keyword, error) {
	var keyword data.Keyword
	err := r.db.GetContext(ctx, &keyword, `SELECT * FROM keywords WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get keyword by id: %w", err)
	}
	return &keyword, nil
}

func (r *KeywordRepo) GetKeywordsByCampaign(ctx context.Context, campaignID int) ([]data.Keyword, error) {
	var keywords []data.Keyword
	query := `
		SELECT id, campaign_id, name, description, created_at, updated_at
		FROM keywords
		WHERE campaign_id = $1
		ORDER BY name`

	err := r.db.SelectContext(ctx, &keywords, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get keywords by campaign: %w", err)
	}
	return keywords, nil
}

func (r *KeywordRepo) UpdateKeyword(ctx context.Context, keyword data.Keyword) error {
	query := `
		UPDATE keywords
		SET name = :name, description = :description, updated_at = now()
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, keyword)
	if err != nil {
		return fmt.Errorf("update keyword: %w", err)
	}
	return nil
}

func (r *KeywordRepo) DeleteKeyword(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM keywords WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete keyword: %w", err)
	}
	return nil
}

func (r *KeywordRepo) CreateTag(ctx context.Context, tag data.Tag) (int, error) {
	query := `
		INSERT INTO tags (keyword_id, name, description)
		VALUES (:keyword_id, :name, :description)
		ON CONFLICT (keyword_id, name) DO NOTHING
		RETURNING id`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, tag)
	if err != nil {
		return 0, fmt.Errorf("create tag: %w", err)
	}
	defer rows.Close()

	var id int
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan returned id: %w", err)
		}
	}
	return id, nil
}

func (r *KeywordRepo) GetTagsByKeyword(ctx context.Context, keywordID int) ([]data.Tag, error) {
	var tags []data.Tag
	err := r.db.SelectContext(ctx, &tags,
		`SELECT * FROM tags WHERE keyword_id = $1 ORDER BY name`, keywordID)
	if err != nil {
		return nil, fmt.Errorf("get tags by keyword: %w", err)
	}
	return tags, nil
}

func (r *KeywordRepo) DeleteTag(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
