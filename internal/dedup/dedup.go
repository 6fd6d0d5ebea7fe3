// Package dedup derives stable fingerprints for postings and tracks
// which fingerprints were already published.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/remotelatam/jobdigest/internal/normalize"
)

// Mode selects what the fingerprint is derived from.
type Mode string

const (
	// ModeLink keys on the canonical link only: reposts of the same URL
	// under different titles collapse to one candidate.
	ModeLink Mode = "link"
	// ModeLinkTitle additionally folds in the lowercased title, keeping
	// same-URL postings with different titles apart.
	ModeLinkTitle Mode = "link_title"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLink, ModeLinkTitle:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown dedup mode %q", s)
}

// Key returns the hex fingerprint of a record under the given mode.
// Input text is NFC-folded first so sources that emit different Unicode
// forms of the same string still produce the same key.
func Key(rec normalize.JobRecord, mode Mode) string {
	base := norm.NFC.String(rec.Link)
	if mode == ModeLinkTitle {
		title := strings.ToLower(normalize.CollapseWhitespace(rec.Title))
		base += "|" + norm.NFC.String(title)
	}
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}

// Deduper checks candidate keys against the persisted published set and
// against keys already seen earlier in the same run.
type Deduper struct {
	mode      Mode
	published map[string]struct{}
	seenRun   map[string]struct{}
}

// New builds a Deduper over a snapshot of previously published keys.
func New(mode Mode, published []string) *Deduper {
	p := make(map[string]struct{}, len(published))
	for _, k := range published {
		p[k] = struct{}{}
	}
	return &Deduper{
		mode:      mode,
		published: p,
		seenRun:   make(map[string]struct{}),
	}
}

func (d *Deduper) Key(rec normalize.JobRecord) string {
	return Key(rec, d.mode)
}

// IsNew reports whether the key was neither published in a prior run nor
// already admitted earlier in this run.
func (d *Deduper) IsNew(key string) bool {
	if _, ok := d.published[key]; ok {
		return false
	}
	_, ok := d.seenRun[key]
	return !ok
}

// MarkSeen records an admitted key for in-run duplicate suppression.
// It does not touch the persisted set; that happens only after a
// successful publish.
func (d *Deduper) MarkSeen(key string) {
	d.seenRun[key] = struct{}{}
}
