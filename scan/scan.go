// Package scan walks newly-ingested items in sequence-ID batches and
// records keyword matches for one campaign at a time, checkpointing
// after every batch so an interrupted run resumes instead of restarting.
package scan

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/redditwatch/api/data"
	"github.com/redditwatch/api/enums"
	"github.com/redditwatch/api/matchers"
	"github.com/redditwatch/api/metrics"
)

// ErrCampaignNotFound means the campaign was deleted between scheduling
// and scanning. A no-op for the run, not a failure of the scanner.
var ErrCampaignNotFound = errors.New("campaign not found")

type CampaignStore interface {
	GetCampaign(ctx context.Context, id int) (*data.Campaign, error)
	UpdateCheckpoint(ctx context.Context, id int, kind enums.Kind, seq int64) error
	TouchLastMatched(ctx context.Context, id int, at time.Time) error
}

type KeywordStore interface {
	GetKeywordsByCampaign(ctx context.Context, campaignID int) ([]data.Keyword, error)
}

type ItemStore interface {
	PostsBatch(ctx context.Context, afterID int64, floor time.Time, limit int) ([]data.Post, error)
	CommentsBatch(ctx context.Context, afterID int64, floor time.Time, limit int) ([]data.Comment, error)
}

type MatchStore interface {
	CreateMatches(ctx context.Context, matches []data.Match) (int, error)
}

// Result summarizes one campaign scan.
type Result struct {
	PostMatches    int
	CommentMatches int
}

func (r Result) Total() int {
	return r.PostMatches + r.CommentMatches
}

type Scanner struct {
	logger    *slog.Logger
	campaigns CampaignStore
	keywords  KeywordStore
	items     ItemStore
	matches   MatchStore
	detector  *matchers.LanguageDetector
	lookback  time.Duration
	batchSize int
}

func NewScanner(logger *slog.Logger, campaigns CampaignStore, keywords KeywordStore, items ItemStore, matches MatchStore, detector *matchers.LanguageDetector, lookback time.Duration, batchSize int) *Scanner {
	return &Scanner{
		logger:    logger,
		campaigns: campaigns,
		keywords:  keywords,
		items:     items,
		matches:   matches,
		detector:  detector,
		lookback:  lookback,
		batchSize: batchSize,
	}
}

// keywordWindow is a keyword with its activation time: the earliest
// origin timestamp it is allowed to match. The lookback tolerates items
// created just before the keyword (clock skew, near-miss additions)
// without re-scanning unrelated history.
type keywordWindow struct {
	id         int
	name       string
	activeFrom time.Time
}

// Run scans both feed kinds for one campaign. The scheduler guarantees
// a single in-flight run per campaign. A mid-run failure keeps every
// checkpoint already persisted; the next run resumes past those batches.
func (s *Scanner) Run(ctx context.Context, campaignID int) (Result, error) {
	campaign, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		metrics.ScanErrors.Inc()
		return Result{}, pkgerrors.Wrap(err, "load campaign")
	}
	if campaign == nil {
		return Result{}, pkgerrors.Wrapf(ErrCampaignNotFound, "campaign %d", campaignID)
	}

	log := s.logger.With("campaign", campaign.Name, "campaign_id", campaign.ID)

	keywords, err := s.keywords.GetKeywordsByCampaign(ctx, campaignID)
	if err != nil {
		metrics.ScanErrors.Inc()
		return Result{}, pkgerrors.Wrap(err, "load keywords")
	}

	windows := buildWindows(keywords, s.lookback)
	if len(windows) == 0 {
		log.Info("no keywords, skipping scan")
		return Result{}, nil
	}

	floor := windowFloor(windows)
	log.Debug("scanning", "keywords", len(windows), "window_floor", floor)

	result := Result{}
	result.PostMatches, err = s.scanPosts(ctx, log, campaign, windows, floor)
	if err != nil {
		metrics.ScanErrors.Inc()
		return result, pkgerrors.Wrap(err, "scan posts")
	}

	result.CommentMatches, err = s.scanComments(ctx, log, campaign, windows, floor)
	if err != nil {
		metrics.ScanErrors.Inc()
		return result, pkgerrors.Wrap(err, "scan comments")
	}

	if err := s.campaigns.TouchLastMatched(ctx, campaignID, time.Now().UTC()); err != nil {
		metrics.ScanErrors.Inc()
		return result, pkgerrors.Wrap(err, "stamp last matched")
	}

	log.Info("scan complete", "post_matches", result.PostMatches, "comment_matches", result.CommentMatches)
	return result, nil
}

func (s *Scanner) scanPosts(ctx context.Context, log *slog.Logger, campaign *data.Campaign, windows []keywordWindow, floor time.Time) (int, error) {
	created := 0
	checkpoint := campaign.LastProcessedPostID

	for {
		batch, err := s.items.PostsBatch(ctx, checkpoint, floor, s.batchSize)
		if err != nil {
			return created, err
		}
		if len(batch) == 0 {
			return created, nil
		}

		log.Debug("scanning posts batch", "size", len(batch), "after_id", checkpoint)

		matches := make([]data.Match, 0, 32)
		for _, post := range batch {
			text := strings.ToLower(post.Title + " " + post.Selftext)
			for _, kw := range windows {
				if post.CreatedUTC.Before(kw.activeFrom) || !matchers.Contains(text, kw.name) {
					continue
				}
				matches = append(matches, data.Match{
					CampaignID: campaign.ID,
					KeywordID:  kw.id,
					PostID:     sql.NullInt64{Int64: post.ID, Valid: true},
					MatchText:  matchers.PostSnippet(post.Title),
					Language:   s.detectLanguage(post.Title + " " + post.Selftext),
				})
			}
			checkpoint = post.ID
		}

		n, err := s.matches.CreateMatches(ctx, matches)
		if err != nil {
			return created, err
		}
		created += n
		metrics.MatchesCreated.WithLabelValues(string(enums.KindPosts)).Add(float64(n))

		if err := s.campaigns.UpdateCheckpoint(ctx, campaign.ID, enums.KindPosts, checkpoint); err != nil {
			return created, err
		}
	}
}

func (s *Scanner) scanComments(ctx context.Context, log *slog.Logger, campaign *data.Campaign, windows []keywordWindow, floor time.Time) (int, error) {
	created := 0
	checkpoint := campaign.LastProcessedCommentID

	for {
		batch, err := s.items.CommentsBatch(ctx, checkpoint, floor, s.batchSize)
		if err != nil {
			return created, err
		}
		if len(batch) == 0 {
			return created, nil
		}

		log.Debug("scanning comments batch", "size", len(batch), "after_id", checkpoint)

		matches := make([]data.Match, 0, 32)
		for _, comment := range batch {
			text := strings.ToLower(comment.Body)
			for _, kw := range windows {
				if comment.CreatedUTC.Before(kw.activeFrom) || !matchers.Contains(text, kw.name) {
					continue
				}
				matches = append(matches, data.Match{
					CampaignID: campaign.ID,
					KeywordID:  kw.id,
					CommentID:  sql.NullInt64{Int64: comment.ID, Valid: true},
					MatchText:  matchers.CommentSnippet(comment.Body),
					Language:   s.detectLanguage(comment.Body),
				})
			}
			checkpoint = comment.ID
		}

		n, err := s.matches.CreateMatches(ctx, matches)
		if err != nil {
			return created, err
		}
		created += n
		metrics.MatchesCreated.WithLabelValues(string(enums.KindComments)).Add(float64(n))

		if err := s.campaigns.UpdateCheckpoint(ctx, campaign.ID, enums.KindComments, checkpoint); err != nil {
			return created, err
		}
	}
}

func (s *Scanner) detectLanguage(text string) string {
	if s.detector == nil {
		return ""
	}
	return s.detector.Detect(text)
}

func buildWindows(keywords []data.Keyword, lookback time.Duration) []keywordWindow {
	windows := make([]keywordWindow, 0, len(keywords))
	for _, kw := range keywords {
		name := strings.ToLower(strings.TrimSpace(kw.Name))
		if name == "" {
			continue
		}
		windows = append(windows, keywordWindow{
			id:         kw.ID,
			name:       name,
			activeFrom: kw.CreatedAt.Add(-lookback),
		})
	}
	return windows
}

func windowFloor(windows []keywordWindow) time.Time {
	floor := windows[0].activeFrom
	for _, w := range windows[1:] {
		if w.activeFrom.Before(floor) {
			floor = w.activeFrom
		}
	}
	return floor
}
