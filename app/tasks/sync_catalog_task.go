package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chrismessina/raycast-store-updates/app/catalog"
	"github.com/chrismessina/raycast-store-updates/app/database"
	"github.com/chrismessina/raycast-store-updates/app/feed"
	"github.com/chrismessina/raycast-store-updates/app/github"
	"github.com/chrismessina/raycast-store-updates/app/metrics"
	"github.com/chrismessina/raycast-store-updates/app/refresh"
)

// SyncCatalogTask runs one reconciliation pass: fetch the new-extensions
// feed and the closed pull requests, classify them, and persist the
// resulting events. Background passes record rate limits on the gate but
// never consult it; only manual refreshes are gated.
type SyncCatalogTask struct {
	Task
	feedClient   *feed.Client
	githubClient *github.Client
	classifier   *catalog.Classifier
	eventRepo    database.EventRepository
	gate         *refresh.Gate
}

func NewSyncCatalogTask(feedClient *feed.Client, githubClient *github.Client,
	classifier *catalog.Classifier, eventRepo database.EventRepository,
	gate *refresh.Gate) *SyncCatalogTask {
	return &SyncCatalogTask{
		Task:         NewTask(TaskTypeSyncCatalog),
		feedClient:   feedClient,
		githubClient: githubClient,
		classifier:   classifier,
		eventRepo:    eventRepo,
		gate:         gate,
	}
}

func (t *SyncCatalogTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Feed failures degrade to an empty entry list: pull-request
	// classification still produces a partial catalog.
	entries, err := t.feedClient.Fetch(ctx)
	if err != nil {
		slog.Warn("Feed fetch failed, continuing without new-extension entries", "error", err)
		entries = nil
	}

	records, err := t.githubClient.ListClosedPulls(ctx)
	if err != nil {
		var rateLimit *github.RateLimitError
		if errors.As(err, &rateLimit) {
			metrics.RateLimitsTotal.Inc()
			if gateErr := t.gate.RecordRateLimit(time.Now(), rateLimit.ResetEpochSeconds); gateErr != nil {
				slog.Error("Failed to record rate limit", "error", gateErr)
			}
		}
		metrics.SyncPassesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to list change records: %w", err)
	}

	newEvents := t.classifier.BuildNewEvents(ctx, entries)
	result := t.classifier.Run(ctx, records, t.classifier.PublishDates(entries))

	inserted := 0
	for kind, events := range map[catalog.EventKind][]catalog.Event{
		catalog.EventNew:     newEvents,
		catalog.EventUpdated: result.Updated,
		catalog.EventRemoved: result.Removed,
	} {
		n, err := t.eventRepo.UpsertEvents(events)
		if err != nil {
			metrics.SyncPassesTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("failed to persist %s events: %w", kind, err)
		}
		metrics.EventsEmittedTotal.WithLabelValues(string(kind)).Add(float64(n))
		inserted += n
	}

	metrics.SyncPassesTotal.WithLabelValues("ok").Inc()
	slog.Info("Catalog sync completed",
		"new", len(newEvents), "updated", len(result.Updated), "removed", len(result.Removed),
		"inserted", inserted, "duration", t.GetDuration().String())
	return nil
}
