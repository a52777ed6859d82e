package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
	"github.com/refdata-io/reconcile-engine/pkg/match"
	"github.com/refdata-io/reconcile-engine/pkg/models"
	"github.com/refdata-io/reconcile-engine/pkg/repositories"
	"github.com/refdata-io/reconcile-engine/pkg/retry"
)

// ReconcileService resolves batches of queries against a dataset. It owns
// the per-dataset index snapshots: each index is built from a consistent
// storage read, cached for a bounded interval, and shared read-only across
// the batch workers. In-flight batches keep the snapshot they started with;
// alias edits take effect in the next build.
type ReconcileService interface {
	// MatchBatch resolves each named query independently and returns one
	// result per input key. The caller identity is used for audit logging
	// only; authentication happens upstream.
	MatchBatch(ctx context.Context, datasetName string, queries map[string]match.Query, caller string) (map[string]match.Result, error)
}

type reconcileService struct {
	datasetRepo repositories.DatasetRepository
	aliasRepo   repositories.AliasRepository
	dispatcher  *match.Dispatcher
	retryCfg    *retry.Config
	snapshotTTL time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	indexes map[uuid.UUID]*cachedIndex
}

type cachedIndex struct {
	idx     *match.Index
	builtAt time.Time
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(
	datasetRepo repositories.DatasetRepository,
	aliasRepo repositories.AliasRepository,
	dispatcher *match.Dispatcher,
	snapshotTTL time.Duration,
	logger *zap.Logger,
) ReconcileService {
	if snapshotTTL <= 0 {
		snapshotTTL = 30 * time.Second
	}
	return &reconcileService{
		datasetRepo: datasetRepo,
		aliasRepo:   aliasRepo,
		dispatcher:  dispatcher,
		retryCfg:    retry.DefaultConfig(),
		snapshotTTL: snapshotTTL,
		logger:      logger.Named("reconcile-service"),
		indexes:     make(map[uuid.UUID]*cachedIndex),
	}
}

var _ ReconcileService = (*reconcileService)(nil)

func (s *reconcileService) MatchBatch(ctx context.Context, datasetName string, queries map[string]match.Query, caller string) (map[string]match.Result, error) {
	dataset, err := s.datasetRepo.GetByName(ctx, datasetName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownDataset, datasetName)
		}
		return nil, err
	}

	idx, err := s.index(ctx, dataset.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrIndexUnavailable, err)
	}

	start := time.Now()
	results := s.dispatcher.Dispatch(ctx, idx, queries)

	s.logger.Info("Resolved match batch",
		zap.String("dataset", datasetName),
		zap.String("caller", caller),
		zap.Int("queries", len(queries)),
		zap.Int("entities", idx.EntityCount()),
		zap.Duration("duration", time.Since(start)))
	return results, nil
}

// index returns the dataset's cached index, rebuilding it from a fresh
// storage snapshot when the cached one has aged past the TTL. Snapshot
// loads are retried with backoff; the failure is classified retryable for
// the caller either way.
func (s *reconcileService) index(ctx context.Context, datasetID uuid.UUID) (*match.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.indexes[datasetID]; ok && time.Since(cached.builtAt) < s.snapshotTTL {
		return cached.idx, nil
	}

	snapshot, err := retry.DoWithResult(ctx, s.retryCfg, func() (*models.Snapshot, error) {
		return s.aliasRepo.Snapshot(ctx, datasetID)
	})
	if err != nil {
		return nil, err
	}

	idx := buildIndex(snapshot)
	s.indexes[datasetID] = &cachedIndex{idx: idx, builtAt: time.Now()}
	return idx, nil
}

// buildIndex maps a storage snapshot into the engine's index input types.
func buildIndex(snapshot *models.Snapshot) *match.Index {
	entities := make([]match.EntityRef, 0, len(snapshot.Entities))
	for _, e := range snapshot.Entities {
		entities = append(entities, match.EntityRef{ID: e.ID, Name: e.Name, Type: e.Type})
	}

	rows := make([]match.AliasRow, 0, len(snapshot.Aliases))
	for _, a := range snapshot.Aliases {
		rows = append(rows, match.AliasRow{Value: a.Value, EntityID: a.EntityID})
	}

	return match.BuildIndex(entities, rows)
}
