package match

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
)

var (
	e1ID = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	e2ID = uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
)

// acmeIndex reproduces the canonical two-entity fixture: E1 "Acme Corp"
// with the extra alias "Acme", E2 "Acme Corporation Ltd" with no extras.
func acmeIndex() *Index {
	entities := []EntityRef{
		{ID: e1ID, Name: "Acme Corp"},
		{ID: e2ID, Name: "Acme Corporation Ltd"},
	}
	rows := []AliasRow{
		{Value: "Acme Corp", EntityID: e1ID},
		{Value: "Acme", EntityID: e1ID},
		{Value: "Acme Corporation Ltd", EntityID: e2ID},
	}
	return BuildIndex(entities, rows)
}

func newTestMatcher(cfg Config) *Matcher {
	return NewMatcher(cfg, zap.NewNop())
}

func TestMatchAcmeScenario(t *testing.T) {
	m := newTestMatcher(DefaultConfig())

	candidates, err := m.Match(acmeIndex(), Query{Text: "Acme", Limit: 2})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, e1ID, candidates[0].ID)
	assert.Equal(t, "Acme Corp", candidates[0].Name)
	assert.Equal(t, 1.0, candidates[0].Score)
	assert.True(t, candidates[0].Match)

	assert.Equal(t, e2ID, candidates[1].ID)
	assert.Less(t, candidates[1].Score, candidates[0].Score)
	assert.False(t, candidates[1].Match)
}

func TestMatchEmptyQuery(t *testing.T) {
	m := newTestMatcher(DefaultConfig())

	for _, text := range []string{"", "   ", "!!!"} {
		_, err := m.Match(acmeIndex(), Query{Text: text})
		assert.ErrorIs(t, err, apperrors.ErrEmptyQuery, "text %q", text)
	}
}

func TestMatchDeterministic(t *testing.T) {
	m := newTestMatcher(DefaultConfig())
	idx := acmeIndex()

	first, err := m.Match(idx, Query{Text: "Acme Corporation"})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := m.Match(idx, Query{Text: "Acme Corporation"})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMatchRankingOrder(t *testing.T) {
	m := newTestMatcher(DefaultConfig())

	candidates, err := m.Match(acmeIndex(), Query{Text: "Acme Corporation Ltd"})
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	for i := 1; i < len(candidates); i++ {
		assert.LessOrEqual(t, candidates[i].Score, candidates[i-1].Score)
	}
}

func TestMatchTieBreakByNameThenID(t *testing.T) {
	idA := uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	idB := uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
	idC := uuid.MustParse("00000000-0000-0000-0000-0000000000b3")

	// All three carry the identical alias, so all tie at 1.0.
	entities := []EntityRef{
		{ID: idC, Name: "zeta"},
		{ID: idB, Name: "Alpha"},
		{ID: idA, Name: "alpha"},
	}
	rows := []AliasRow{
		{Value: "shared name", EntityID: idA},
		{Value: "shared name", EntityID: idB},
		{Value: "shared name", EntityID: idC},
	}
	m := newTestMatcher(DefaultConfig())

	candidates, err := m.Match(BuildIndex(entities, rows), Query{Text: "shared name"})
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// "alpha" and "Alpha" compare equal case-insensitively, so ID
	// ascending decides between them; "zeta" sorts last by name.
	assert.Equal(t, idA, candidates[0].ID)
	assert.Equal(t, idB, candidates[1].ID)
	assert.Equal(t, idC, candidates[2].ID)
}

func TestMatchLimitClamping(t *testing.T) {
	cfg := Config{Threshold: 0.8, Margin: 0.05, DefaultLimit: 2, MaxLimit: 3}
	m := newTestMatcher(cfg)

	entities := make([]EntityRef, 0, 6)
	rows := make([]AliasRow, 0, 6)
	for i := 0; i < 6; i++ {
		id := uuid.New()
		entities = append(entities, EntityRef{ID: id, Name: "common token"})
		rows = append(rows, AliasRow{Value: "common token", EntityID: id})
	}
	idx := BuildIndex(entities, rows)

	// Zero limit falls back to the default.
	candidates, err := m.Match(idx, Query{Text: "common"})
	require.NoError(t, err)
	assert.Len(t, candidates, 2)

	// Oversized limit clamps to the cap instead of being rejected.
	candidates, err = m.Match(idx, Query{Text: "common", Limit: 100})
	require.NoError(t, err)
	assert.Len(t, candidates, 3)

	candidates, err = m.Match(idx, Query{Text: "common", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestMatchAmbiguousCandidatesNotFlagged(t *testing.T) {
	// Two entities tie above the threshold; neither may be auto-accepted.
	entities := []EntityRef{
		{ID: e1ID, Name: "Acme GmbH"},
		{ID: e2ID, Name: "Acme AG"},
	}
	rows := []AliasRow{
		{Value: "Acme Trading", EntityID: e1ID},
		{Value: "Acme Trading", EntityID: e2ID},
	}
	m := newTestMatcher(DefaultConfig())

	candidates, err := m.Match(BuildIndex(entities, rows), Query{Text: "Acme Trading"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, candidates[0].Score, candidates[1].Score)
	assert.Greater(t, candidates[0].Score, 0.8)
	for _, c := range candidates {
		assert.False(t, c.Match, "tied candidates must stay ambiguous")
	}
}

func TestMatchAmbiguityLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMatcher(DefaultConfig(), zap.New(core))

	entities := []EntityRef{
		{ID: e1ID, Name: "Acme GmbH"},
		{ID: e2ID, Name: "Acme AG"},
	}
	rows := []AliasRow{
		{Value: "Acme Trading", EntityID: e1ID},
		{Value: "Acme Trading", EntityID: e2ID},
	}

	candidates, err := m.Match(BuildIndex(entities, rows), Query{Text: "Acme Trading"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.False(t, candidates[0].Match)

	require.Len(t, logs.FilterMessage("Ambiguous top candidate not flagged").All(), 1)
}

func TestMatchAmbiguityCheckedBeforeTruncation(t *testing.T) {
	// A limit of 1 must not hide the runner-up from the margin check.
	entities := []EntityRef{
		{ID: e1ID, Name: "Acme GmbH"},
		{ID: e2ID, Name: "Acme AG"},
	}
	rows := []AliasRow{
		{Value: "Acme Trading", EntityID: e1ID},
		{Value: "Acme Trading", EntityID: e2ID},
	}
	m := newTestMatcher(DefaultConfig())

	candidates, err := m.Match(BuildIndex(entities, rows), Query{Text: "Acme Trading", Limit: 1})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.False(t, candidates[0].Match)
}

func TestMatchSingleCandidateAboveThreshold(t *testing.T) {
	m := newTestMatcher(DefaultConfig())

	entities := []EntityRef{{ID: e1ID, Name: "Acme Corp"}}
	idx := BuildIndex(entities, nil)

	candidates, err := m.Match(idx, Query{Text: "Acme Corp"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].Match)
}

func TestMatchBelowThresholdNotFlagged(t *testing.T) {
	m := newTestMatcher(DefaultConfig())

	candidates, err := m.Match(acmeIndex(), Query{Text: "Corporation"})
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.False(t, candidates[0].Match)
}

func TestMatchTypeFilter(t *testing.T) {
	entities := []EntityRef{
		{ID: e1ID, Name: "Acme Corp", Type: "company"},
		{ID: e2ID, Name: "Acme River", Type: "place"},
	}
	m := newTestMatcher(DefaultConfig())
	idx := BuildIndex(entities, nil)

	candidates, err := m.Match(idx, Query{Text: "Acme", Type: "place"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, e2ID, candidates[0].ID)
}
