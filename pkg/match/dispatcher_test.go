package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
)

// faultyMatcher wraps a real Matcher but fails queries with a marker text,
// to verify per-entry isolation.
type faultyMatcher struct {
	inner    *Matcher
	failText string
}

func (f *faultyMatcher) Match(idx *Index, q Query) ([]Candidate, error) {
	if q.Text == f.failText {
		return nil, errors.New("injected failure")
	}
	return f.inner.Match(idx, q)
}

// slowMatcher blocks on every call, to exercise batch deadlines.
type slowMatcher struct {
	delay time.Duration
}

func (s *slowMatcher) Match(idx *Index, q Query) ([]Candidate, error) {
	time.Sleep(s.delay)
	return []Candidate{}, nil
}

func newTestDispatcher(m QueryMatcher, cfg DispatcherConfig) *Dispatcher {
	return NewDispatcher(m, cfg, zap.NewNop())
}

func TestDispatchKeyPreservation(t *testing.T) {
	d := newTestDispatcher(newTestMatcher(DefaultConfig()), DefaultDispatcherConfig())

	queries := map[string]Query{
		"q0": {Text: "Acme"},
		"q1": {Text: "Corporation"},
		"q2": {Text: "no such thing here"},
		"q3": {Text: ""},
	}
	results := d.Dispatch(context.Background(), acmeIndex(), queries)

	require.Len(t, results, len(queries))
	for key := range queries {
		_, ok := results[key]
		assert.True(t, ok, "missing key %q", key)
	}
}

func TestDispatchEmptyQueryCondition(t *testing.T) {
	d := newTestDispatcher(newTestMatcher(DefaultConfig()), DefaultDispatcherConfig())

	results := d.Dispatch(context.Background(), acmeIndex(), map[string]Query{
		"empty": {Text: "   "},
		"good":  {Text: "Acme"},
	})

	// The empty entry reports its condition with zero candidates instead of
	// failing the batch.
	assert.Equal(t, ConditionEmptyQuery, results["empty"].Condition)
	assert.NotNil(t, results["empty"].Candidates)
	assert.Empty(t, results["empty"].Candidates)

	assert.Empty(t, results["good"].Condition)
	assert.NotEmpty(t, results["good"].Candidates)
}

func TestDispatchFailureIsolation(t *testing.T) {
	inner := newTestMatcher(DefaultConfig())
	d := newTestDispatcher(&faultyMatcher{inner: inner, failText: "poison"}, DefaultDispatcherConfig())
	idx := acmeIndex()

	baseline := d.Dispatch(context.Background(), idx, map[string]Query{
		"a": {Text: "Acme"},
		"b": {Text: "Corporation Ltd"},
	})

	withFailure := d.Dispatch(context.Background(), idx, map[string]Query{
		"a":      {Text: "Acme"},
		"b":      {Text: "Corporation Ltd"},
		"poison": {Text: "poison"},
	})

	assert.Equal(t, ConditionFailed, withFailure["poison"].Condition)
	assert.Empty(t, withFailure["poison"].Candidates)

	// Sibling entries are unaffected by the injected failure.
	assert.Equal(t, baseline["a"], withFailure["a"])
	assert.Equal(t, baseline["b"], withFailure["b"])
}

func TestDispatchTimeout(t *testing.T) {
	d := newTestDispatcher(&slowMatcher{delay: 100 * time.Millisecond}, DispatcherConfig{
		MaxConcurrent: 1,
		BatchTimeout:  20 * time.Millisecond,
	})

	results := d.Dispatch(context.Background(), acmeIndex(), map[string]Query{
		"q0": {Text: "first"},
		"q1": {Text: "second"},
		"q2": {Text: "third"},
	})

	require.Len(t, results, 3)

	// Only one worker slot exists; the two queries still queued when the
	// deadline passed report timeout, the in-flight one completes.
	timedOut := 0
	for _, res := range results {
		if res.Condition == ConditionTimeout {
			timedOut++
			assert.Empty(t, res.Candidates)
		}
	}
	assert.Equal(t, 2, timedOut)
}

func TestDispatchCanceledContext(t *testing.T) {
	d := newTestDispatcher(&slowMatcher{delay: 50 * time.Millisecond}, DispatcherConfig{
		MaxConcurrent: 1,
		BatchTimeout:  time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.Dispatch(ctx, acmeIndex(), map[string]Query{
		"q0": {Text: "first"},
		"q1": {Text: "second"},
	})

	require.Len(t, results, 2)
}

func TestDispatchEmptyBatch(t *testing.T) {
	d := newTestDispatcher(newTestMatcher(DefaultConfig()), DefaultDispatcherConfig())

	results := d.Dispatch(context.Background(), acmeIndex(), nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestDispatchSharedSnapshotConsistency(t *testing.T) {
	d := newTestDispatcher(newTestMatcher(DefaultConfig()), DefaultDispatcherConfig())
	idx := acmeIndex()

	// Many concurrent queries over one immutable snapshot must all see the
	// same results as a lone query.
	lone, err := newTestMatcher(DefaultConfig()).Match(idx, Query{Text: "Acme"})
	require.NoError(t, err)

	queries := make(map[string]Query, 32)
	for i := 0; i < 32; i++ {
		queries[string(rune('a'+i))] = Query{Text: "Acme"}
	}
	results := d.Dispatch(context.Background(), idx, queries)

	for key, res := range results {
		assert.Empty(t, res.Condition, "key %q", key)
		assert.Equal(t, lone, res.Candidates, "key %q", key)
	}
}

func TestResolveWrapsEmptyQueryError(t *testing.T) {
	d := newTestDispatcher(newTestMatcher(DefaultConfig()), DefaultDispatcherConfig())

	res := d.resolve(acmeIndex(), Query{Text: ""})
	assert.Equal(t, ConditionEmptyQuery, res.Condition)

	_, err := newTestMatcher(DefaultConfig()).Match(acmeIndex(), Query{Text: ""})
	assert.ErrorIs(t, err, apperrors.ErrEmptyQuery)
}
