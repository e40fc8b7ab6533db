package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redditwatch/api/data"
)

type ItemRepo struct {
	db *sqlx.DB
}

func NewItemRepo(db *sqlx.DB) *ItemRepo {
	return &ItemRepo{db}
}

// InsertPosts stores posts keyed by reddit_id, silently skipping any
// fullname already present. Returns the number actually inserted.
func (r *ItemRepo) InsertPosts(ctx context.Context, posts []data.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO reddit_posts
			(reddit_id, title, url, author, subreddit, selftext, permalink,
			 score, num_comments, is_video, over_18, spoiler, stickied, created_utc)
		VALUES
			(:reddit_id, :title, :url, :author, :subreddit, :selftext, :permalink,
			 :score, :num_comments, :is_video, :over_18, :spoiler, :stickied, :created_utc)
		ON CONFLICT (reddit_id) DO NOTHING`

	res, err := r.db.NamedExecContext(ctx, query, posts)
	if err != nil {
		return 0, fmt.Errorf("insert posts: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert posts rows affected: %w", err)
	}
	return int(inserted), nil
}

// InsertComments mirrors InsertPosts for the comments stream.
func (r *ItemRepo) InsertComments(ctx context.Context, comments []data.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO reddit_comments
			(reddit_id, link_id, body, author, subreddit, permalink, score, created_utc)
		VALUES
			(:reddit_id, :link_id, :body, :author, :subreddit, :permalink, :score, :created_utc)
		ON CONFLICT (reddit_id) DO NOTHING`

	res, err := r.db.NamedExecContext(ctx, query, comments)
	if err != nil {
		return 0, fmt.Errorf("insert comments: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert comments rows affected: %w", err)
	}
	return int(inserted), nil
}

func (r *ItemRepo) CountPosts(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reddit_posts`)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (r *ItemRepo) CountComments(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reddit_comments`)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// PostsBatch returns up to limit posts with sequence ID strictly above
// afterID and origin time at or after floor, oldest sequence first.
func (r *ItemRepo) PostsBatch(ctx context.Context, afterID int64, floor time.Time, limit int) ([]data.Post, error) {
	var posts []data.Post
	query := `
		SELECT * FROM reddit_posts
		WHERE id > $1 AND created_utc >= $2
		ORDER BY id ASC
		LIMIT $3`

	err := r.db.SelectContext(ctx, &posts, query, afterID, floor, limit)
	if err != nil {
		return nil, fmt.Errorf("posts batch: %w", err)
	}
	return posts, nil
}

// CommentsBatch mirrors PostsBatch for comments.
func (r *ItemRepo) CommentsBatch(ctx context.Context, afterID int64, floor time.Time, limit int) ([]data.Comment, error) {
	var comments []data.Comment
	query := `
		SELECT * FROM reddit_comments
		WHERE id > $1 AND created_utc >= $2
		ORDER BY id ASC
		LIMIT $3`

	err := r.db.SelectContext(ctx, &comments, query, afterID, floor, limit)
	if err != nil {
		return nil, fmt.Errorf("comments batch: %w", err)
	}
	return comments, nil
}

// ListPosts is the display-layer read, newest first.
func (r *ItemRepo) ListPosts(ctx context.Context, limit, offset int) ([]data.Post, error) {
	var posts []data.Post
	err := r.db.SelectContext(ctx, &posts,
		`SELECT * FROM reddit_posts ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *ItemRepo) ListComments(ctx context.Context, limit, offset int) ([]data.Comment, error) {
	var comments []data.Comment
	err := r.db.SelectContext(ctx, &comments,
		`SELECT * FROM reddit_comments ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// DeleteAll removes every ingested item. Matches go with them via
// cascading deletes.
func (r *ItemRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reddit_posts`); err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reddit_comments`); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}
