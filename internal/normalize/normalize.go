// Package normalize turns raw feed entries into the canonical JobRecord
// shape the rest of the pipeline operates on.
package normalize

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/remotelatam/jobdigest/internal/feeds"
)

// JobRecord is one normalized posting. Title and Link are always
// non-empty; entries that cannot satisfy that are dropped.
type JobRecord struct {
	Title     string
	Link      string
	Summary   string
	Published *time.Time // UTC; nil when the source gave no usable timestamp
	SourceID  string
}

// Text returns the searchable text of the record, the concatenation the
// gate, scorer and tag inference all match against.
func (r JobRecord) Text() string {
	return r.Title + " " + r.Summary
}

// PublishedOrZero is the tie-break instant: records without a timestamp
// rank as epoch zero, below any timestamped record.
func (r JobRecord) PublishedOrZero() time.Time {
	if r.Published == nil {
		return time.Time{}
	}
	return *r.Published
}

// Record normalizes one raw entry. The second return is false when the
// entry must be dropped (empty title or link after normalization).
func Record(e feeds.Entry) (JobRecord, bool) {
	title := CollapseWhitespace(e.Title)
	link := CanonicalLink(e.Link)
	if title == "" || link == "" {
		return JobRecord{}, false
	}

	summary := CollapseWhitespace(stripHTML(e.Summary))
	if cats := cleanCategories(e.Categories); len(cats) > 0 {
		// Surface feed tags to the keyword/geo matching downstream.
		summary = strings.TrimSpace(summary + " | categories: " + strings.Join(cats, ", "))
	}

	return JobRecord{
		Title:     title,
		Link:      link,
		Summary:   summary,
		Published: timestamp(e),
		SourceID:  e.SourceID,
	}, true
}

// CollapseWhitespace folds every whitespace run into a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// trackingParams are query parameters that vary per click without changing
// the posting they point at.
var trackingParams = map[string]bool{
	"ref":    true,
	"source": true,
	"fbclid": true,
	"gclid":  true,
}

// CanonicalLink strips the fragment and tracking query parameters and
// lowercases scheme and host, so that two links to the same posting
// compare equal. An unparsable link is returned trimmed but otherwise
// untouched.
func CanonicalLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || trackingParams[lk] {
			q.Del(k)
		}
	}
	// deterministic query ordering
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// stripHTML extracts plain text from markup-bearing summaries. Feeds are
// inconsistent here: some ship plain text, some full HTML blobs.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

func cleanCategories(cats []string) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		c = CollapseWhitespace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// timestamp picks published over updated and converts to UTC. Entries
// without either stay timestampless and are treated as always-fresh.
func timestamp(e feeds.Entry) *time.Time {
	t := e.Published
	if t == nil {
		t = e.Updated
	}
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
