// Package gate decides whether a normalized posting enters the scoring
// stage. All five checks are independent boolean predicates; the order
// here only short-circuits the cheap ones first.
package gate

import (
	"time"

	"github.com/remotelatam/jobdigest/internal/config"
	"github.com/remotelatam/jobdigest/internal/dedup"
	"github.com/remotelatam/jobdigest/internal/match"
	"github.com/remotelatam/jobdigest/internal/normalize"
)

type Gate struct {
	filters config.Filters
	deduper *dedup.Deduper
	now     func() time.Time
}

func New(filters config.Filters, deduper *dedup.Deduper) *Gate {
	return &Gate{
		filters: filters,
		deduper: deduper,
		now:     time.Now,
	}
}

// Admit runs the admission checks against a record and its dedup key.
// The reason names the first failed check, for logs and counters.
func (g *Gate) Admit(rec normalize.JobRecord, key string) (bool, string) {
	if !g.fresh(rec) {
		return false, "stale"
	}

	text := rec.Text()

	if len(g.filters.IncludeKeywords) > 0 && !match.ContainsAny(text, g.filters.IncludeKeywords) {
		return false, "no_include_keyword"
	}
	if match.ContainsAny(text, g.filters.ExcludeKeywords) {
		return false, "exclude_keyword"
	}
	if !g.inRegion(text) {
		return false, "geography"
	}
	if !g.deduper.IsNew(key) {
		return false, "duplicate"
	}
	return true, ""
}

// fresh applies the lookback window. Records without a timestamp are
// treated as always-fresh.
func (g *Gate) fresh(rec normalize.JobRecord) bool {
	if rec.Published == nil {
		return true
	}
	lookback := g.filters.Lookback()
	if lookback <= 0 {
		return true
	}
	return g.now().UTC().Sub(*rec.Published) <= lookback
}

// inRegion is the strict geography allow-gate: either the broad region
// marker or one of the admitted country markers must appear in the text.
func (g *Gate) inRegion(text string) bool {
	if match.ContainsAny(text, g.filters.RegionMarkers()) {
		return true
	}
	return match.ContainsAny(text, g.filters.Countries)
}
