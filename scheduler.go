package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/redditwatch/api/data/repos"
	"github.com/redditwatch/api/enums"
	"github.com/redditwatch/api/ingest"
	"github.com/redditwatch/api/scan"
)

// Scheduler drives the periodic units of work: one ingestion loop per
// feed kind and one scan loop over due campaigns. Each loop is a single
// goroutine running its units sequentially, which is what guarantees
// the single-flight discipline the cursor and checkpoint writers rely
// on. Running two scheduler processes against the same database would
// break that guarantee.
type Scheduler struct {
	ingestor  *ingest.Ingestor
	scanner   *scan.Scanner
	campaigns *repos.CampaignRepo

	postInterval    time.Duration
	commentInterval time.Duration
	scanTick        time.Duration
}

func NewScheduler(ingestor *ingest.Ingestor, scanner *scan.Scanner, campaigns *repos.CampaignRepo, postInterval, commentInterval time.Duration) *Scheduler {
	return &Scheduler{
		ingestor:        ingestor,
		scanner:         scanner,
		campaigns:       campaigns,
		postInterval:    postInterval,
		commentInterval: commentInterval,
		scanTick:        30 * time.Second,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.ingestLoop(ctx, enums.KindPosts, s.postInterval)
	go s.ingestLoop(ctx, enums.KindComments, s.commentInterval)
	go s.scanLoop(ctx)
}

func (s *Scheduler) ingestLoop(ctx context.Context, kind enums.Kind, interval time.Duration) {
	slog.Info("starting ingest loop", "kind", kind, "interval", interval.Seconds())

	s.runIngest(ctx, kind)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping ingest loop", "kind", kind)
			return
		case <-ticker.C:
			s.runIngest(ctx, kind)
		}
	}
}

func (s *Scheduler) runIngest(ctx context.Context, kind enums.Kind) {
	if _, err := s.ingestor.Run(ctx, kind); err != nil {
		// Non-fatal: the cursor is untouched and the next tick retries.
		slog.Error("ingest run failed", "kind", kind, "error", err)
	}
}

func (s *Scheduler) scanLoop(ctx context.Context) {
	slog.Info("starting scan loop", "tick", s.scanTick.Seconds())

	ticker := time.NewTicker(s.scanTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping scan loop")
			return
		case <-ticker.C:
			s.runDueScans(ctx)
		}
	}
}

func (s *Scheduler) runDueScans(ctx context.Context) {
	due, err := s.campaigns.DueCampaigns(ctx, time.Now().UTC())
	if err != nil {
		slog.Error("list due campaigns", "error", err)
		return
	}

	for _, campaign := range due {
		if ctx.Err() != nil {
			return
		}

		result, err := s.scanner.Run(ctx, campaign.ID)
		if err != nil {
			if errors.Is(err, scan.ErrCampaignNotFound) {
				slog.Warn("campaign vanished before scan", "campaign_id", campaign.ID)
				continue
			}
			slog.Error("scan run failed", "campaign_id", campaign.ID, "error", err)
			continue
		}

		if result.Total() > 0 {
			slog.Info("campaign matched", "campaign_id", campaign.ID, "matches", result.Total())
		}
	}
}
