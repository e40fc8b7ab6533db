package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redditwatch/api/data"
	"github.com/redditwatch/api/enums"
)

type CampaignRepo struct {
	db *sqlx.DB
}

func NewCampaignRepo(db *sqlx.DB) *CampaignRepo {
	return &CampaignRepo{db}
}

func (r *CampaignRepo) CreateCampaign(ctx context.Context, c data.Campaign) (int, error) {
	var id int
	query := `
		INSERT INTO campaigns (name, description, is_watching, match_interval_seconds)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.GetContext(ctx, &id, query, c.Name, c.Description, c.IsWatching, c.MatchIntervalSeconds)
	if err != nil {
		return 0, fmt.Errorf("create campaign: %w", err)
	}
	return id, nil
}

// GetCampaign returns nil without error when the campaign does not exist.
func (r *CampaignRepo) GetCampaign(ctx context.Context, id int) (*data.Campaign, error) {
	var campaign data.Campaign
	err := r.db.GetContext(ctx, &campaign, `SELECT * FROM campaigns WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &campaign, nil
}

func (r *CampaignRepo) GetCampaigns(ctx context.Context) ([]data.Campaign, error) {
	var campaigns []data.Campaign
	err := r.db.SelectContext(ctx, &campaigns, `SELECT * FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("get campaigns: %w", err)
	}
	return campaigns, nil
}

// DueCampaigns returns watching campaigns whose match interval has
// elapsed since their last scan, never-scanned ones first.
func (r *CampaignRepo) DueCampaigns(ctx context.Context, now time.Time) ([]data.Campaign, error) {
	var campaigns []data.Campaign
	query := `
		SELECT * FROM campaigns
		WHERE is_watching = true
		  AND (last_matched_at IS NULL
		       OR last_matched_at + make_interval(secs => match_interval_seconds) <= $1)
		ORDER BY last_matched_at ASC NULLS FIRST`

	err := r.db.SelectContext(ctx, &campaigns, query, now)
	if err != nil {
		return nil, fmt.Errorf("due campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *CampaignRepo) UpdateCampaign(ctx context.Context, c data.Campaign) error {
	query := `
		UPDATE campaigns
		SET name = :name, description = :description, is_watching = :is_watching,
		    match_interval_seconds = :match_interval_seconds, updated_at = now()
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) DeleteCampaign(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return nil
}

// UpdateCheckpoint persists the scan checkpoint for one feed kind. The
// column only ever moves forward; the guard keeps a delayed write from
// rolling an already-advanced checkpoint back.
func (r *CampaignRepo) UpdateCheckpoint(ctx context.Context, id int, kind enums.Kind, seq int64) error {
	column := "last_processed_post_id"
	if kind == enums.KindComments {
		column = "last_processed_comment_id"
	}

	query := fmt.Sprintf(`UPDATE campaigns SET %s = $2 WHERE id = $1 AND %s < $2`, column, column)
	_, err := r.db.ExecContext(ctx, query, id, seq)
	if err != nil {
		return fmt.Errorf("update %s checkpoint: %w", kind, err)
	}
	return nil
}

func (r *CampaignRepo) TouchLastMatched(ctx context.Context, id int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE campaigns SET last_matched_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch last matched: %w", err)
	}
	return nil
}

// ResetCheckpoints zeroes every campaign's scan checkpoints. Part of the
// administrative bulk reset.
func (r *CampaignRepo) ResetCheckpoints(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET last_processed_post_id = 0, last_processed_comment_id = 0`)
	if err != nil {
		return fmt.Errorf("reset checkpoints: %w", err)
	}
	return nil
}
