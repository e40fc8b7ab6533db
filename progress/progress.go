// Package progress publishes last-run ingestion statistics to Redis for
// the live status widget. Write-only from the engine's perspective and
// purely observability: a failed publish never fails the run.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redditwatch/api/enums"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

const progressKey = "redditwatch:ingestion_progress"

const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusUnknown = "unknown"
)

// Report is the per-kind entry in the shared progress record.
type Report struct {
	LastFetchAt time.Time `json:"last_fetch_at"`
	LastCount   int       `json:"last_count"`
	NewCount    int       `json:"new_count"`
	Total       int       `json:"total"`
	Status      string    `json:"status"`
	Error       *string   `json:"error"`
}

type Reporter struct {
	client *redis.Client
}

func NewReporter(client *redis.Client) *Reporter {
	return &Reporter{client: client}
}

// Publish merges the report for one kind into the shared record. The
// read-modify-write is not transactional; each kind has a single writer
// so the only raced writer is the other kind, and a retry re-reads.
func (r *Reporter) Publish(ctx context.Context, kind enums.Kind, report Report) error {
	backoff := retry.WithMaxRetries(2, retry.NewConstant(100*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		record, err := r.read(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}

		if report.Total == 0 {
			report.Total = record[string(kind)].Total
		}
		record[string(kind)] = report

		raw, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := r.client.Set(ctx, progressKey, raw, 0).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish progress %s: %w", kind, err)
	}
	return nil
}

// Read returns the full progress record for the display layer.
func (r *Reporter) Read(ctx context.Context) (map[string]Report, error) {
	record, err := r.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	return record, nil
}

func (r *Reporter) read(ctx context.Context) (map[string]Report, error) {
	record := make(map[string]Report)

	raw, err := r.client.Get(ctx, progressKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return record, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(raw, &record); err != nil {
		// A corrupt record is replaced rather than poisoning every publish.
		return make(map[string]Report), nil
	}
	return record, nil
}

// Connect parses a redis:// URL or a bare host:port address.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}
