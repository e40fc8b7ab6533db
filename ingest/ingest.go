// Package ingest pulls the public feed forward one page at a time,
// persisting new items idempotently and advancing the per-kind cursor.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redditwatch/api/data"
	"github.com/redditwatch/api/enums"
	"github.com/redditwatch/api/metrics"
	"github.com/redditwatch/api/models"
	"github.com/redditwatch/api/progress"
)

// FeedClient fetches one page of the upstream listing, newest first.
type FeedClient interface {
	Fetch(ctx context.Context, kind enums.Kind, before string, limit int) ([]models.RedditItem, error)
}

// CursorStore owns the per-kind ingestion pointer.
type CursorStore interface {
	Get(ctx context.Context, kind enums.Kind) (data.Cursor, error)
	RecordFetch(ctx context.Context, kind enums.Kind, newestID string) error
	RecordEmpty(ctx context.Context, kind enums.Kind, threshold int) (bool, error)
}

// ItemStore persists fetched items, skipping already-stored fullnames.
type ItemStore interface {
	InsertPosts(ctx context.Context, posts []data.Post) (int, error)
	InsertComments(ctx context.Context, comments []data.Comment) (int, error)
	CountPosts(ctx context.Context) (int, error)
	CountComments(ctx context.Context) (int, error)
}

// Reporter publishes run statistics for the live status widget.
type Reporter interface {
	Publish(ctx context.Context, kind enums.Kind, report progress.Report) error
}

// Result summarizes one ingestion run.
type Result struct {
	Fetched  int
	New      int
	NewestID string
}

type Ingestor struct {
	logger         *slog.Logger
	client         FeedClient
	cursors        CursorStore
	items          ItemStore
	reporter       Reporter
	fetchLimit     int
	staleThreshold int
}

func NewIngestor(logger *slog.Logger, client FeedClient, cursors CursorStore, items ItemStore, reporter Reporter, fetchLimit, staleThreshold int) *Ingestor {
	return &Ingestor{
		logger:         logger,
		client:         client,
		cursors:        cursors,
		items:          items,
		reporter:       reporter,
		fetchLimit:     fetchLimit,
		staleThreshold: staleThreshold,
	}
}

// Run executes one fetch for the given kind. The scheduler guarantees a
// single in-flight run per kind, so the cursor has exactly one writer.
// Any failure leaves the cursor untouched and is retried next tick.
func (i *Ingestor) Run(ctx context.Context, kind enums.Kind) (Result, error) {
	log := i.logger.With("kind", kind, "run_id", uuid.NewString())

	cursor, err := i.cursors.Get(ctx, kind)
	if err != nil {
		i.reportError(ctx, kind, err)
		return Result{}, errors.Wrap(err, "read cursor")
	}

	before := ""
	if cursor.LastSeenID.Valid {
		before = cursor.LastSeenID.String
		log.Info("ingesting items before cursor", "before", before)
	} else {
		log.Info("no cursor, fetching feed head")
	}

	items, err := i.client.Fetch(ctx, kind, before, i.fetchLimit)
	if err != nil {
		metrics.IngestErrors.WithLabelValues(string(kind)).Inc()
		i.reportError(ctx, kind, err)
		return Result{}, errors.Wrap(err, "fetch feed")
	}

	if len(items) == 0 {
		reset, err := i.cursors.RecordEmpty(ctx, kind, i.staleThreshold)
		if err != nil {
			i.reportError(ctx, kind, err)
			return Result{}, errors.Wrap(err, "record empty fetch")
		}
		if reset {
			metrics.StaleCursorResets.WithLabelValues(string(kind)).Inc()
			log.Warn("cursor stale, cleared after consecutive empty fetches", "threshold", i.staleThreshold)
		} else {
			log.Info("no new items")
		}
		i.report(ctx, kind, 0, 0)
		return Result{}, nil
	}

	// The listing is newest first, so the first item is the next cursor.
	newestID := items[0].Name

	newCount, err := i.store(ctx, kind, items)
	if err != nil {
		i.reportError(ctx, kind, err)
		return Result{}, errors.Wrap(err, "store items")
	}

	if err := i.cursors.RecordFetch(ctx, kind, newestID); err != nil {
		i.reportError(ctx, kind, err)
		return Result{}, errors.Wrap(err, "record fetch")
	}

	metrics.ItemsFetched.WithLabelValues(string(kind)).Add(float64(len(items)))
	metrics.ItemsIngested.WithLabelValues(string(kind)).Add(float64(newCount))

	i.report(ctx, kind, len(items), newCount)
	log.Info("processed items", "count", len(items), "new", newCount, "newest_id", newestID)

	return Result{Fetched: len(items), New: newCount, NewestID: newestID}, nil
}

func (i *Ingestor) store(ctx context.Context, kind enums.Kind, items []models.RedditItem) (int, error) {
	if kind == enums.KindComments {
		comments := make([]data.Comment, 0, len(items))
		for _, item := range items {
			if item.Name == "" {
				continue
			}
			comments = append(comments, toComment(item))
		}
		return i.items.InsertComments(ctx, comments)
	}

	posts := make([]data.Post, 0, len(items))
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		posts = append(posts, toPost(item))
	}
	return i.items.InsertPosts(ctx, posts)
}

func (i *Ingestor) report(ctx context.Context, kind enums.Kind, count, newCount int) {
	total := i.total(ctx, kind)
	report := progress.Report{
		LastFetchAt: time.Now().UTC(),
		LastCount:   count,
		NewCount:    newCount,
		Total:       total,
		Status:      progress.StatusSuccess,
	}
	if err := i.reporter.Publish(ctx, kind, report); err != nil {
		i.logger.Error("publish progress", "kind", kind, "error", err)
	}
}

func (i *Ingestor) reportError(ctx context.Context, kind enums.Kind, runErr error) {
	msg := runErr.Error()
	report := progress.Report{
		LastFetchAt: time.Now().UTC(),
		Status:      progress.StatusError,
		Error:       &msg,
	}
	if err := i.reporter.Publish(ctx, kind, report); err != nil {
		i.logger.Error("publish progress", "kind", kind, "error", err)
	}
}

func (i *Ingestor) total(ctx context.Context, kind enums.Kind) int {
	var total int
	var err error
	if kind == enums.KindComments {
		total, err = i.items.CountComments(ctx)
	} else {
		total, err = i.items.CountPosts(ctx)
	}
	if err != nil {
		i.logger.Error("count items", "kind", kind, "error", err)
		return 0
	}
	return total
}

func toPost(item models.RedditItem) data.Post {
	return data.Post{
		RedditID:    item.Name,
		Title:       truncate(item.Title, 300),
		URL:         item.URL,
		Author:      defaultAuthor(item.Author),
		Subreddit:   item.Subreddit,
		Selftext:    item.Selftext,
		Permalink:   item.Permalink,
		Score:       item.Score,
		NumComments: item.NumComments,
		IsVideo:     item.IsVideo,
		Over18:      item.Over18,
		Spoiler:     item.Spoiler,
		Stickied:    item.Stickied,
		CreatedUTC:  fromEpoch(item.CreatedUTC),
	}
}

func toComment(item models.RedditItem) data.Comment {
	return data.Comment{
		RedditID:   item.Name,
		LinkID:     item.LinkID,
		Body:       item.Body,
		Author:     defaultAuthor(item.Author),
		Subreddit:  item.Subreddit,
		Permalink:  item.Permalink,
		Score:      item.Score,
		CreatedUTC: fromEpoch(item.CreatedUTC),
	}
}

func fromEpoch(seconds float64) time.Time {
	return time.Unix(int64(seconds), 0).UTC()
}

func defaultAuthor(author string) string {
	if author == "" {
		return "unknown"
	}
	return author
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
