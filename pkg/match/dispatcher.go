package match

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
)

// Condition classifies a per-entry outcome other than plain success.
type Condition string

const (
	// ConditionEmptyQuery marks an entry whose text normalized to no tokens.
	ConditionEmptyQuery Condition = "empty_query"
	// ConditionTimeout marks an entry left unresolved when the batch
	// deadline expired or the batch was canceled.
	ConditionTimeout Condition = "timeout"
	// ConditionFailed marks an entry whose resolution failed for any other
	// reason; sibling entries are unaffected.
	ConditionFailed Condition = "failed"
)

// Result is the outcome of one batch entry: the ranked candidates, plus an
// explicit condition when the entry did not resolve cleanly. Candidates is
// never nil.
type Result struct {
	Candidates []Candidate `json:"result"`
	Condition  Condition   `json:"condition,omitempty"`
}

// QueryMatcher resolves a single query against an index snapshot.
type QueryMatcher interface {
	Match(idx *Index, q Query) ([]Candidate, error)
}

var _ QueryMatcher = (*Matcher)(nil)

// DispatcherConfig configures batch dispatch.
type DispatcherConfig struct {
	// MaxConcurrent bounds the number of queries resolved in parallel.
	MaxConcurrent int
	// BatchTimeout bounds total batch latency; entries unresolved at the
	// deadline report ConditionTimeout rather than partial scores.
	BatchTimeout time.Duration
}

// DefaultDispatcherConfig returns sensible defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		MaxConcurrent: 8,
		BatchTimeout:  10 * time.Second,
	}
}

// Dispatcher fans a batch of independent named queries out over a bounded
// pool of workers sharing one immutable index snapshot. Entries are
// isolated: a failure in one never aborts or alters its siblings, and the
// response carries exactly the input key set.
type Dispatcher struct {
	matcher QueryMatcher
	config  DispatcherConfig
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher around the given matcher.
func NewDispatcher(matcher QueryMatcher, config DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 8
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 10 * time.Second
	}
	return &Dispatcher{
		matcher: matcher,
		config:  config,
		logger:  logger.Named("dispatcher"),
	}
}

// Dispatch resolves every query concurrently against the shared snapshot
// and returns one Result per input key. The whole batch is bounded by the
// configured timeout and cancelable through ctx; workers never mutate the
// shared index, so cancellation cannot corrupt state.
func (d *Dispatcher) Dispatch(ctx context.Context, idx *Index, queries map[string]Query) map[string]Result {
	results := make(map[string]Result, len(queries))
	if len(queries) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.BatchTimeout)
	defer cancel()

	type keyedResult struct {
		key string
		res Result
	}

	resultsChan := make(chan keyedResult, len(queries))
	sem := make(chan struct{}, d.config.MaxConcurrent)

	var wg sync.WaitGroup
	for key, q := range queries {
		wg.Add(1)
		go func(key string, q Query) {
			defer wg.Done()

			// Acquire a worker slot; entries still queued at the deadline
			// report timeout instead of blocking the batch.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				resultsChan <- keyedResult{key, Result{Candidates: []Candidate{}, Condition: ConditionTimeout}}
				return
			}

			resultsChan <- keyedResult{key, d.resolve(idx, q)}
		}(key, q)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for kr := range resultsChan {
		results[kr.key] = kr.res
	}
	return results
}

// resolve runs one query through the matcher and maps its error, if any,
// to the entry's condition.
func (d *Dispatcher) resolve(idx *Index, q Query) Result {
	candidates, err := d.matcher.Match(idx, q)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyQuery) {
			return Result{Candidates: []Candidate{}, Condition: ConditionEmptyQuery}
		}
		d.logger.Warn("Query resolution failed", zap.Error(err))
		return Result{Candidates: []Candidate{}, Condition: ConditionFailed}
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	return Result{Candidates: candidates}
}
