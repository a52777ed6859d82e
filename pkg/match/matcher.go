package match

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
)

// Config holds the matcher's ranking and disambiguation settings.
type Config struct {
	// Threshold is the minimum score the top candidate must exceed to be
	// flagged a match.
	Threshold float64
	// Margin is the minimum lead the top candidate must hold over the
	// runner-up; a high score shared by near-identical candidates is
	// ambiguous and must not be auto-accepted.
	Margin float64
	// DefaultLimit applies when a query requests no limit.
	DefaultLimit int
	// MaxLimit caps any requested limit to bound response size.
	MaxLimit int
}

// DefaultConfig returns the standard matcher settings.
func DefaultConfig() Config {
	return Config{
		Threshold:    0.8,
		Margin:       0.05,
		DefaultLimit: 5,
		MaxLimit:     50,
	}
}

// Query is one match request against a dataset snapshot.
type Query struct {
	Text string `json:"query"`
	// Type restricts candidates to entities of this type when non-empty.
	Type string `json:"type,omitempty"`
	// Limit bounds the number of candidates returned; 0 means the
	// configured default. Out-of-range values are clamped, not rejected.
	Limit int `json:"limit,omitempty"`
}

// Candidate is one scored, ranked entity returned for a query.
type Candidate struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Score float64   `json:"score"`
	Match bool      `json:"match"`
}

// Matcher resolves a single query against an index snapshot into a ranked,
// thresholded candidate list.
type Matcher struct {
	cfg    Config
	logger *zap.Logger
}

// NewMatcher creates a Matcher with the given configuration.
func NewMatcher(cfg Config, logger *zap.Logger) *Matcher {
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = 5
	}
	if cfg.MaxLimit < 1 {
		cfg.MaxLimit = 50
	}
	return &Matcher{
		cfg:    cfg,
		logger: logger.Named("matcher"),
	}
}

// Match normalizes the query, looks up candidate entities sharing at least
// one token, scores each entity on its best alias, and returns candidates
// sorted by score descending with deterministic tie-breaks (display name
// ascending case-insensitive, then entity ID ascending), truncated to the
// clamped limit. The top candidate is flagged a match only if its score
// exceeds the threshold and leads the runner-up by at least the margin.
// A query that normalizes to no tokens returns apperrors.ErrEmptyQuery.
func (m *Matcher) Match(idx *Index, q Query) ([]Candidate, error) {
	nq := Normalize(q.Text)
	if nq.Empty() {
		return nil, apperrors.ErrEmptyQuery
	}

	limit := m.clampLimit(q.Limit)

	candidateIDs := idx.LookupCandidates(nq.Tokens, q.Type)
	candidates := make([]Candidate, 0, len(candidateIDs))
	for id := range candidateIDs {
		ref, ok := idx.Entity(id)
		if !ok {
			continue
		}

		// An entity matches on its best alias, not an average.
		best := 0.0
		for _, alias := range idx.Aliases(id) {
			if s := Score(nq, alias); s > best {
				best = s
			}
		}
		if best == 0.0 {
			continue
		}

		candidates = append(candidates, Candidate{ID: id, Name: ref.Name, Score: best})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		ni, nj := strings.ToLower(candidates[i].Name), strings.ToLower(candidates[j].Name)
		if ni != nj {
			return ni < nj
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})

	// Decide the match flag before truncation so a limit of 1 cannot hide
	// an ambiguous runner-up.
	if len(candidates) > 0 {
		top := candidates[0].Score
		lead := top
		if len(candidates) > 1 {
			lead = top - candidates[1].Score
		}
		if top > m.cfg.Threshold && lead >= m.cfg.Margin {
			candidates[0].Match = true
		} else if top > m.cfg.Threshold {
			m.logger.Debug("Ambiguous top candidate not flagged",
				zap.String("query", nq.Text),
				zap.Float64("top_score", top),
				zap.Float64("lead", lead))
		}
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// clampLimit resolves a requested limit to the configured bounds: zero or
// negative means the default, anything above the cap is clamped.
func (m *Matcher) clampLimit(requested int) int {
	switch {
	case requested <= 0:
		return m.cfg.DefaultLimit
	case requested > m.cfg.MaxLimit:
		return m.cfg.MaxLimit
	default:
		return requested
	}
}
