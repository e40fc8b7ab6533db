package data

import (
	"database/sql"
	"time"

	"github.com/redditwatch/api/enums"
)

type Campaign struct {
	ID                     int            `db:"id"`
	Name                   string         `db:"name"`
	Description            string         `db:"description"`
	IsWatching             bool           `db:"is_watching"`
	MatchIntervalSeconds   int            `db:"match_interval_seconds"`
	LastProcessedPostID    int64          `db:"last_processed_post_id"`
	LastProcessedCommentID int64          `db:"last_processed_comment_id"`
	LastMatchedAt          sql.NullTime   `db:"last_matched_at"`
	CreatedAt              time.Time      `db:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at"`
}

// Checkpoint returns the campaign's scan checkpoint for the given feed kind.
func (c Campaign) Checkpoint(kind enums.Kind) int64 {
	if kind == enums.KindComments {
		return c.LastProcessedCommentID
	}
	return c.LastProcessedPostID
}

type Keyword struct {
	ID          int       `db:"id"`
	CampaignID  int       `db:"campaign_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Tag struct {
	ID          int       `db:"id"`
	KeywordID   int       `db:"keyword_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Post is an ingested submission. Immutable once stored; ID is the local
// sequence used for scan ordering, RedditID the platform fullname (t3_xxx).
type Post struct {
	ID          int64     `db:"id" json:"id"`
	RedditID    string    `db:"reddit_id" json:"redditId"`
	Title       string    `db:"title" json:"title"`
	URL         string    `db:"url" json:"url"`
	Author      string    `db:"author" json:"author"`
	Subreddit   string    `db:"subreddit" json:"subreddit"`
	Selftext    string    `db:"selftext" json:"selftext"`
	Permalink   string    `db:"permalink" json:"permalink"`
	Score       int       `db:"score" json:"score"`
	NumComments int       `db:"num_comments" json:"numComments"`
	IsVideo     bool      `db:"is_video" json:"isVideo"`
	Over18      bool      `db:"over_18" json:"over18"`
	Spoiler     bool      `db:"spoiler" json:"spoiler"`
	Stickied    bool      `db:"stickied" json:"stickied"`
	CreatedUTC  time.Time `db:"created_utc" json:"createdUtc"`
	IngestedAt  time.Time `db:"ingested_at" json:"ingestedAt"`
}

// Comment is an ingested comment (fullname t1_xxx).
type Comment struct {
	ID         int64     `db:"id" json:"id"`
	RedditID   string    `db:"reddit_id" json:"redditId"`
	LinkID     string    `db:"link_id" json:"linkId"`
	Body       string    `db:"body" json:"body"`
	Author     string    `db:"author" json:"author"`
	Subreddit  string    `db:"subreddit" json:"subreddit"`
	Permalink  string    `db:"permalink" json:"permalink"`
	Score      int       `db:"score" json:"score"`
	CreatedUTC time.Time `db:"created_utc" json:"createdUtc"`
	IngestedAt time.Time `db:"ingested_at" json:"ingestedAt"`
}

// Match records one (campaign, keyword, item) hit. Exactly one of PostID
// and CommentID is set. Rows are never updated after creation.
type Match struct {
	ID         int64         `db:"id"`
	CampaignID int           `db:"campaign_id"`
	KeywordID  int           `db:"keyword_id"`
	PostID     sql.NullInt64 `db:"post_id"`
	CommentID  sql.NullInt64 `db:"comment_id"`
	MatchText  string        `db:"match_text"`
	Language   string        `db:"language"`
	CreatedAt  time.Time     `db:"created_at"`
}

// Cursor is the per-kind ingestion pointer. LastSeenID is the fullname of
// the newest item from the most recent non-empty fetch; nulled when the
// consecutive empty counter hits the stale threshold.
type Cursor struct {
	Kind            enums.Kind     `db:"kind"`
	LastSeenID      sql.NullString `db:"last_seen_id"`
	EmptyFetchCount int            `db:"empty_fetch_count"`
	UpdatedAt       time.Time      `db:"updated_at"`
}
