package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/models"
	"github.com/refdata-io/reconcile-engine/pkg/repositories"
)

// EntityService manages the canonical entities of a dataset.
type EntityService interface {
	Create(ctx context.Context, datasetID uuid.UUID, name, entityType string) (*models.Entity, error)
	Get(ctx context.Context, datasetID, id uuid.UUID) (*models.Entity, error)
	List(ctx context.Context, datasetID uuid.UUID) ([]*models.Entity, error)
	Update(ctx context.Context, datasetID, id uuid.UUID, name, entityType string) (*models.Entity, error)
	Delete(ctx context.Context, datasetID, id uuid.UUID) error
}

type entityService struct {
	entityRepo repositories.EntityRepository
	logger     *zap.Logger
}

// NewEntityService creates a new entity service.
func NewEntityService(entityRepo repositories.EntityRepository, logger *zap.Logger) EntityService {
	return &entityService{
		entityRepo: entityRepo,
		logger:     logger.Named("entity-service"),
	}
}

var _ EntityService = (*entityService)(nil)

func (s *entityService) Create(ctx context.Context, datasetID uuid.UUID, name, entityType string) (*models.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("entity name must not be empty")
	}

	entity := &models.Entity{
		DatasetID: datasetID,
		Name:      name,
		Type:      entityType,
	}
	if err := s.entityRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	s.logger.Info("Created entity",
		zap.String("dataset_id", datasetID.String()),
		zap.String("entity_id", entity.ID.String()),
		zap.String("name", name))
	return entity, nil
}

func (s *entityService) Get(ctx context.Context, datasetID, id uuid.UUID) (*models.Entity, error) {
	return s.entityRepo.GetByID(ctx, datasetID, id)
}

func (s *entityService) List(ctx context.Context, datasetID uuid.UUID) ([]*models.Entity, error) {
	return s.entityRepo.ListByDataset(ctx, datasetID)
}

func (s *entityService) Update(ctx context.Context, datasetID, id uuid.UUID, name, entityType string) (*models.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("entity name must not be empty")
	}

	entity := &models.Entity{
		ID:        id,
		DatasetID: datasetID,
		Name:      name,
		Type:      entityType,
	}
	if err := s.entityRepo.Update(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *entityService) Delete(ctx context.Context, datasetID, id uuid.UUID) error {
	return s.entityRepo.Delete(ctx, datasetID, id)
}
