package gate

import (
	"testing"
	"time"

	"github.com/remotelatam/jobdigest/internal/config"
	"github.com/remotelatam/jobdigest/internal/dedup"
	"github.com/remotelatam/jobdigest/internal/normalize"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func testFilters() config.Filters {
	return config.Filters{
		IncludeKeywords: []string{"engineer", "developer"},
		ExcludeKeywords: []string{"unpaid", "internship"},
		Region:          "latam",
		RegionAliases:   []string{"latin america"},
		Countries:       []string{"argentina", "brazil", "mexico"},
		LookbackHours:   48,
	}
}

func newTestGate(filters config.Filters, published []string) *Gate {
	g := New(filters, dedup.New(dedup.ModeLink, published))
	g.now = func() time.Time { return testNow }
	return g
}

func rec(title, summary string, age time.Duration) normalize.JobRecord {
	r := normalize.JobRecord{Title: title, Summary: summary, Link: "https://example.com/j/1", SourceID: "test"}
	if age >= 0 {
		ts := testNow.Add(-age)
		r.Published = &ts
	}
	return r
}

func TestAdmit(t *testing.T) {
	tests := []struct {
		name   string
		record normalize.JobRecord
		want   bool
		reason string
	}{
		{
			name:   "fresh matching record admitted",
			record: rec("Backend Engineer", "Remote, Argentina", 2*time.Hour),
			want:   true,
		},
		{
			name:   "stale record rejected",
			record: rec("Backend Engineer", "Remote, Argentina", 72*time.Hour),
			want:   false,
			reason: "stale",
		},
		{
			name:   "timestampless record always fresh",
			record: rec("Backend Engineer", "Argentina", -1),
			want:   true,
		},
		{
			name:   "no include keyword",
			record: rec("Office Manager", "Buenos Aires, Argentina", time.Hour),
			want:   false,
			reason: "no_include_keyword",
		},
		{
			name:   "exclude keyword wins",
			record: rec("Engineer internship", "Argentina", time.Hour),
			want:   false,
			reason: "exclude_keyword",
		},
		{
			name:   "geography is a strict allow-gate",
			record: rec("Backend Engineer", "Remote, Europe only", time.Hour),
			want:   false,
			reason: "geography",
		},
		{
			name:   "region alias admits",
			record: rec("Backend Engineer", "open to Latin America", time.Hour),
			want:   true,
		},
		{
			name:   "keyword match via categories in summary",
			record: rec("Backend Engineer", "great team | categories: Remote, Brazil", time.Hour),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGate(testFilters(), nil)
			key := dedup.Key(tt.record, dedup.ModeLink)
			got, reason := g.Admit(tt.record, key)
			if got != tt.want {
				t.Errorf("Admit() = %v (reason %q), want %v", got, reason, tt.want)
			}
			if !tt.want && reason != tt.reason {
				t.Errorf("reason = %q, want %q", reason, tt.reason)
			}
		})
	}
}

func TestAdmitEmptyIncludeListMeansNoRestriction(t *testing.T) {
	filters := testFilters()
	filters.IncludeKeywords = nil

	g := newTestGate(filters, nil)
	r := rec("Office Manager", "Buenos Aires, Argentina", time.Hour)
	if ok, reason := g.Admit(r, dedup.Key(r, dedup.ModeLink)); !ok {
		t.Errorf("empty include list must not restrict, got rejection %q", reason)
	}
}

func TestAdmitRejectsPublishedDuplicates(t *testing.T) {
	r := rec("Backend Engineer", "Remote, Argentina", time.Hour)
	key := dedup.Key(r, dedup.ModeLink)

	g := newTestGate(testFilters(), []string{key})
	if ok, reason := g.Admit(r, key); ok || reason != "duplicate" {
		t.Errorf("already published key must be rejected as duplicate, got ok=%v reason=%q", ok, reason)
	}
}
