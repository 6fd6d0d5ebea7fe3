// Package digest selects the final batch and renders it into the single
// HTML message sent to the channel.
package digest

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/remotelatam/jobdigest/internal/config"
	"github.com/remotelatam/jobdigest/internal/match"
	"github.com/remotelatam/jobdigest/internal/normalize"
)

// ScoredJob pairs a record with its rank score and dedup key for the
// duration of one run.
type ScoredJob struct {
	normalize.JobRecord
	Score int
	Key   string
}

// Select sorts candidates descending by (score, recency) and takes a
// prefix of at most max. The second return is false when fewer than min
// survive: the run must then end without publishing or touching state.
func Select(jobs []ScoredJob, min, max int) ([]ScoredJob, bool) {
	sorted := make([]ScoredJob, len(jobs))
	copy(sorted, jobs)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].PublishedOrZero().After(sorted[j].PublishedOrZero())
	})

	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}
	if len(sorted) < min {
		return nil, false
	}
	return sorted, true
}

// Role tags are best-effort labels inferred from the posting text. They
// never affect admission or ranking.
var roleTags = []struct {
	Tag string
	Any []string
}{
	{"#backend", []string{"backend", "back-end", "back end"}},
	{"#frontend", []string{"frontend", "front-end", "front end"}},
	{"#fullstack", []string{"fullstack", "full-stack", "full stack"}},
	{"#devops", []string{"devops", "sre", "infrastructure", "platform engineer"}},
	{"#data", []string{"data engineer", "data scientist", "analytics", "machine learning"}},
	{"#mobile", []string{"android", "ios", "mobile"}},
	{"#qa", []string{"qa ", "quality assurance", "test engineer"}},
	{"#design", []string{"designer", "ux", "ui "}},
}

// headerOffset pins the header timestamp to the digest audience's clock
// (UTC-3) regardless of where the job runs.
var headerOffset = time.FixedZone("UTC-3", -3*60*60)

// Telegram rejects messages beyond ~4096 characters; stay under it with
// headroom for the markup.
const maxMessageBytes = 4000

type Formatter struct {
	cfg config.Formatting
	now func() time.Time
}

func NewFormatter(cfg config.Formatting) *Formatter {
	return &Formatter{cfg: cfg, now: time.Now}
}

// RenderBounded renders the digest and, when the message would exceed
// the Telegram size budget, drops the lowest-ranked entries until it
// fits. At least one entry is always kept. The second return is the
// batch actually rendered, so only those keys get committed.
func (f *Formatter) RenderBounded(jobs []ScoredJob) (string, []ScoredJob) {
	msg := f.Render(jobs)
	for len(msg) > maxMessageBytes && len(jobs) > 1 {
		jobs = jobs[:len(jobs)-1]
		msg = f.Render(jobs)
	}
	return msg, jobs
}

// Render produces the complete digest message. All feed-derived text is
// HTML-escaped; the message is sent with HTML parse mode.
func (f *Formatter) Render(jobs []ScoredJob) string {
	var b strings.Builder

	now := f.now().In(headerOffset)
	header := f.cfg.TitleTemplate
	header = strings.ReplaceAll(header, "{date}", now.Format("02.01"))
	header = strings.ReplaceAll(header, "{time}", now.Format("15:04"))
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Selected: %d openings\n\n", len(jobs)))

	for i, job := range jobs {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b>\n", i+1, html.EscapeString(job.Title)))
		b.WriteString(fmt.Sprintf("🔗 <a href=\"%s\">Apply</a>\n", html.EscapeString(job.Link)))

		if tags := f.inferTags(job); len(tags) > 0 {
			b.WriteString("🏷 " + strings.Join(tags, " ") + "\n")
		}
		if name := f.sourceName(job.SourceID); name != "" {
			b.WriteString("via " + html.EscapeString(name) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Join(f.cfg.Hashtags, " "))
	return b.String()
}

// inferTags derives role and geography labels by keyword matching.
func (f *Formatter) inferTags(job ScoredJob) []string {
	text := job.Text()
	var tags []string

	for _, rt := range roleTags {
		if match.ContainsAny(text, rt.Any) {
			tags = append(tags, rt.Tag)
		}
	}
	if match.ContainsAny(text, []string{"remote", "remoto", "anywhere"}) {
		tags = append(tags, "#remote")
	}
	return tags
}

func (f *Formatter) sourceName(id string) string {
	if name, ok := f.cfg.SourceNames[id]; ok {
		return name
	}
	return id
}
