// Package app wires the pipeline together: fetch, normalize, gate,
// score, select, render, publish, commit. One synchronous pass per run.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/remotelatam/jobdigest/internal/config"
	"github.com/remotelatam/jobdigest/internal/dedup"
	"github.com/remotelatam/jobdigest/internal/digest"
	"github.com/remotelatam/jobdigest/internal/feeds"
	"github.com/remotelatam/jobdigest/internal/gate"
	"github.com/remotelatam/jobdigest/internal/logger"
	"github.com/remotelatam/jobdigest/internal/metrics"
	"github.com/remotelatam/jobdigest/internal/normalize"
	"github.com/remotelatam/jobdigest/internal/score"
	"github.com/remotelatam/jobdigest/internal/state"
	"github.com/remotelatam/jobdigest/internal/telegram"
)

// Fetcher is the feed collaborator.
type Fetcher interface {
	FetchAll(ctx context.Context, feeds []config.Feed) []feeds.Entry
}

// Publisher is the notification collaborator.
type Publisher interface {
	Send(ctx context.Context, text string) error
}

// PublisherFactory defers publisher construction until a digest is
// actually ready: the Telegram handshake must not fail runs that end in
// the normal "insufficient" outcome.
type PublisherFactory func() (Publisher, error)

// Run executes one digest cycle with the real collaborators.
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()

	store, err := newStateStore(cfg.Meta)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing state store", "error", err)
		}
	}()

	newPublisher := func() (Publisher, error) {
		return telegram.NewPublisher(
			cfg.TelegramToken, cfg.TelegramChatID,
			cfg.PublishTimeout, cfg.RetryAttempts, cfg.RetryDelay)
	}

	fetcher := feeds.NewFetcher(cfg.RequestTimeout)

	if err := run(ctx, cfg, fetcher, newPublisher, store); err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}
	metrics.Global.SetLastRun(time.Since(start))
	return nil
}

// newStateStore selects the published-state backend.
func newStateStore(meta config.Meta) (state.Store, error) {
	if meta.StateBackend == "sqlite" {
		return state.NewSQLiteStore(meta.StatePath)
	}
	return state.NewFileStore(meta.StatePath)
}

// run is the collaborator-injected pipeline body, shared with tests.
func run(ctx context.Context, cfg *config.Config, fetcher Fetcher, newPublisher PublisherFactory, store state.Store) error {
	published, err := store.Load()
	if err != nil {
		return fmt.Errorf("load published state: %w", err)
	}
	logger.Info("state loaded", "published_keys", len(published), "backend", cfg.Meta.StateBackend)

	mode, err := dedup.ParseMode(cfg.Meta.DedupMode)
	if err != nil {
		return err
	}
	deduper := dedup.New(mode, published)
	admission := gate.New(cfg.Filters, deduper)
	scorer := score.New(cfg.Filters, cfg.Scoring)

	entries := fetcher.FetchAll(ctx, cfg.Feeds)

	var candidates []digest.ScoredJob
	for _, e := range entries {
		metrics.Global.IncrementEntriesProcessed()

		rec, ok := normalize.Record(e)
		if !ok {
			metrics.Global.IncrementRecordsDropped()
			continue
		}

		key := deduper.Key(rec)
		admit, reason := admission.Admit(rec, key)
		if !admit {
			if reason == "duplicate" {
				metrics.Global.IncrementDuplicatesFiltered()
			} else {
				metrics.Global.IncrementGateRejected()
			}
			logger.Debug("rejected", "reason", reason, "title", rec.Title, "source", rec.SourceID)
			continue
		}
		deduper.MarkSeen(key)

		candidates = append(candidates, digest.ScoredJob{
			JobRecord: rec,
			Score:     scorer.Score(rec),
			Key:       key,
		})
	}
	logger.Info("gating complete", "entries", len(entries), "candidates", len(candidates))

	selected, ok := digest.Select(candidates, cfg.Meta.MinItemsPerDigest, cfg.Meta.MaxItemsPerDigest)
	if !ok {
		// Normal outcome, not an error: nothing published, state untouched.
		logger.Info("not enough fresh postings for a digest",
			"candidates", len(candidates), "min", cfg.Meta.MinItemsPerDigest)
		return nil
	}

	message, rendered := digest.NewFormatter(cfg.Formatting).RenderBounded(selected)
	if len(rendered) < len(selected) {
		logger.Warn("digest trimmed to fit the message size limit",
			"selected", len(selected), "rendered", len(rendered))
	}

	publisher, err := newPublisher()
	if err != nil {
		return fmt.Errorf("init publisher: %w", err)
	}

	if err := publisher.Send(ctx, message); err != nil {
		// State is deliberately not committed: the same batch is
		// re-attempted on the next invocation.
		return fmt.Errorf("publish digest: %w", err)
	}
	metrics.Global.IncrementDigestsPublished()

	// Only the jobs that made it into the message count as published.
	keys := make([]string, 0, len(rendered))
	for _, job := range rendered {
		keys = append(keys, job.Key)
	}
	next := state.Append(published, keys, cfg.Meta.MaxPublishedEntries)
	if err := store.Save(next); err != nil {
		return fmt.Errorf("save published state: %w", err)
	}

	logger.Info("digest published", "jobs", len(rendered), "state_keys", len(next))
	return nil
}
