package normalize

import (
	"testing"
	"time"

	"github.com/remotelatam/jobdigest/internal/feeds"
)

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Senior   Backend\tEngineer \n", "Senior Backend Engineer"},
		{"plain", "plain"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := CollapseWhitespace(tt.in); got != tt.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips utm params",
			in:   "https://example.com/job/123?utm_source=x&utm_medium=rss",
			want: "https://example.com/job/123",
		},
		{
			name: "strips fragment and ref",
			in:   "https://example.com/job/123?ref=hn#apply",
			want: "https://example.com/job/123",
		},
		{
			name: "keeps meaningful params sorted",
			in:   "https://example.com/jobs?page=2&id=9&fbclid=abc",
			want: "https://example.com/jobs?id=9&page=2",
		},
		{
			name: "lowercases scheme and host",
			in:   "HTTPS://Example.COM/Job/123",
			want: "https://example.com/Job/123",
		},
		{
			name: "gclid and source removed",
			in:   "https://example.com/j?gclid=1&source=feed&lang=en",
			want: "https://example.com/j?lang=en",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalLink(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalLinkEquivalence(t *testing.T) {
	a := CanonicalLink("https://example.com/job/55?utm_source=twitter&utm_campaign=jobs")
	b := CanonicalLink("https://example.com/job/55#details")
	if a != b {
		t.Errorf("links differing only in tracking params/fragment must canonicalize equal: %q vs %q", a, b)
	}
}

func TestRecord(t *testing.T) {
	published := time.Date(2026, 8, 29, 14, 0, 0, 0, time.FixedZone("ART", -3*60*60))

	rec, ok := Record(feeds.Entry{
		Title:      "  Senior Backend Engineer — Remote   (Argentina) ",
		Link:       "https://boards.example.com/p/987?utm_source=x",
		Summary:    "<p>Build APIs in <b>Go</b>.</p>",
		Published:  &published,
		Categories: []string{"Backend", " Remote "},
		SourceID:   "weworkremotely",
	})
	if !ok {
		t.Fatal("expected record to be admitted")
	}
	if rec.Title != "Senior Backend Engineer — Remote (Argentina)" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Link != "https://boards.example.com/p/987" {
		t.Errorf("link = %q", rec.Link)
	}
	if rec.Summary != "Build APIs in Go. | categories: Backend, Remote" {
		t.Errorf("summary = %q", rec.Summary)
	}
	if rec.Published == nil || rec.Published.Location() != time.UTC {
		t.Errorf("published must be UTC, got %v", rec.Published)
	}
	if rec.Published.Hour() != 17 {
		t.Errorf("UTC conversion wrong, got hour %d", rec.Published.Hour())
	}
	if rec.SourceID != "weworkremotely" {
		t.Errorf("sourceID = %q", rec.SourceID)
	}
}

func TestRecordDropsEmptyTitleOrLink(t *testing.T) {
	if _, ok := Record(feeds.Entry{Title: "   ", Link: "https://example.com"}); ok {
		t.Error("whitespace-only title must be dropped")
	}
	if _, ok := Record(feeds.Entry{Title: "Engineer", Link: ""}); ok {
		t.Error("empty link must be dropped")
	}
}

func TestRecordWithoutTimestampFallsBackToUpdated(t *testing.T) {
	updated := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	rec, ok := Record(feeds.Entry{Title: "Engineer", Link: "https://x.com/1", Updated: &updated})
	if !ok {
		t.Fatal("expected record")
	}
	if rec.Published == nil || !rec.Published.Equal(updated) {
		t.Errorf("expected updated timestamp fallback, got %v", rec.Published)
	}

	rec, _ = Record(feeds.Entry{Title: "Engineer", Link: "https://x.com/2"})
	if rec.Published != nil {
		t.Errorf("no timestamp must stay nil, got %v", rec.Published)
	}
	if !rec.PublishedOrZero().IsZero() {
		t.Error("timestampless record must tie-break as epoch zero")
	}
}
