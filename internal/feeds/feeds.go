// Package feeds wraps the RSS/Atom client. Each enabled feed is fetched
// sequentially; a broken source is logged and contributes zero entries.
package feeds

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/remotelatam/jobdigest/internal/config"
	"github.com/remotelatam/jobdigest/internal/logger"
	"github.com/remotelatam/jobdigest/internal/metrics"
)

// Entry is one raw posting as it came off a feed, before normalization.
type Entry struct {
	Title      string
	Link       string
	Summary    string
	Published  *time.Time
	Updated    *time.Time
	Categories []string
	SourceID   string
}

type Fetcher struct {
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

// NewFetcher builds a fetcher with a bounded per-request timeout and a
// politeness limiter of one request per second across all sources.
func NewFetcher(timeout time.Duration) *Fetcher {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	return &Fetcher{
		parser:  p,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// FetchAll downloads and parses every enabled feed. Fetch or parse
// failures are isolated per feed: the error is logged, the feed yields
// nothing, and the remaining feeds are still processed.
func (f *Fetcher) FetchAll(ctx context.Context, feeds []config.Feed) []Entry {
	var entries []Entry
	okCount := 0

	for _, fd := range feeds {
		if !fd.Enabled {
			continue
		}
		if fd.Type != "" && fd.Type != "rss" && fd.Type != "atom" {
			logger.Warn("skipping feed with unrecognized type", "feed", fd.ID, "type", fd.Type)
			continue
		}

		if err := f.limiter.Wait(ctx); err != nil {
			logger.Warn("fetch canceled", "feed", fd.ID, "error", err)
			break
		}

		parsed, err := f.parser.ParseURLWithContext(fd.URL, ctx)
		if err != nil {
			logger.Warn("feed fetch failed", "feed", fd.ID, "url", fd.URL, "error", err)
			metrics.Global.IncrementFeedsFailed()
			continue
		}

		for _, item := range parsed.Items {
			entries = append(entries, Entry{
				Title:      item.Title,
				Link:       item.Link,
				Summary:    pickSummary(item),
				Published:  item.PublishedParsed,
				Updated:    item.UpdatedParsed,
				Categories: item.Categories,
				SourceID:   fd.ID,
			})
		}
		okCount++
		logger.Info("feed fetched", "feed", fd.ID, "entries", len(parsed.Items))
	}

	metrics.Global.SetFeedsFetched(okCount)
	logger.Info("feed fetch complete", "ok", okCount, "entries", len(entries))
	return entries
}

// pickSummary prefers the summary/description field and falls back to the
// full content element some feeds put their text into.
func pickSummary(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}
