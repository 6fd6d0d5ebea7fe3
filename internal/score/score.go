// Package score ranks admitted postings with additive keyword signals.
// The keyword tables and weights come from configuration; only the
// seniority and compensation heuristics are fixed expressions.
package score

import (
	"regexp"

	"github.com/remotelatam/jobdigest/internal/config"
	"github.com/remotelatam/jobdigest/internal/match"
	"github.com/remotelatam/jobdigest/internal/normalize"
)

var (
	seniorityRegex = regexp.MustCompile(`(?i)\b(senior|lead|staff|principal|head|director)\b`)

	// Currency symbols and common ISO/regional codes.
	currencyRegex = regexp.MustCompile(`(?i)[$€£]|\b(usd|eur|gbp|ars|brl|mxn|cop|clp|pen|uyu)\b`)
	// Salary-shaped figures: "$120k", "90k", "120,000". Plain 4-digit
	// numbers are not matched so years do not count as compensation.
	salaryFigureRegex = regexp.MustCompile(`(?i)\$?\b\d{2,3}(\.\d+)?\s?k\b|\b\d{1,3}(,\d{3})+\b`)
)

type Scorer struct {
	filters config.Filters
	weights config.Scoring
}

func New(filters config.Filters, weights config.Scoring) *Scorer {
	return &Scorer{filters: filters, weights: weights}
}

// Score computes the rank of one record. Deterministic and purely
// additive over independent signals.
func (s *Scorer) Score(rec normalize.JobRecord) int {
	text := rec.Text()
	score := 0

	if match.ContainsAny(text, s.filters.RegionMarkers()) {
		score += s.weights.RegionWeight
	}
	if match.ContainsAny(text, s.filters.Countries) {
		score += s.weights.CountryWeight
	}
	if match.ContainsAny(text, s.filters.RemoteKeywords) {
		score += s.weights.RemoteWeight
	}
	if seniorityRegex.MatchString(text) {
		score++
	}
	if currencyRegex.MatchString(text) || salaryFigureRegex.MatchString(text) {
		score++
	}
	return score
}
