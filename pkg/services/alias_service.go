package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/models"
	"github.com/refdata-io/reconcile-engine/pkg/repositories"
)

// AliasService manages aliases and their entity links. Creation and update
// run the full uniqueness validation; aliases are never partially mutated.
type AliasService interface {
	Create(ctx context.Context, datasetID uuid.UUID, value string, data json.RawMessage, createdBy string) (*models.Alias, error)
	Get(ctx context.Context, datasetID, id uuid.UUID) (*models.Alias, error)
	List(ctx context.Context, datasetID uuid.UUID, filter string) ([]*models.Alias, error)
	Update(ctx context.Context, datasetID, id uuid.UUID, value string, data json.RawMessage, updatedBy string) (*models.Alias, error)
	Delete(ctx context.Context, datasetID, id uuid.UUID) error
	Link(ctx context.Context, datasetID, aliasID, entityID uuid.UUID, createdBy string) error
	Unlink(ctx context.Context, datasetID, aliasID uuid.UUID) error
}

type aliasService struct {
	aliasRepo repositories.AliasRepository
	logger    *zap.Logger
}

// NewAliasService creates a new alias service.
func NewAliasService(aliasRepo repositories.AliasRepository, logger *zap.Logger) AliasService {
	return &aliasService{
		aliasRepo: aliasRepo,
		logger:    logger.Named("alias-service"),
	}
}

var _ AliasService = (*aliasService)(nil)

func (s *aliasService) Create(ctx context.Context, datasetID uuid.UUID, value string, data json.RawMessage, createdBy string) (*models.Alias, error) {
	existing, err := s.aliasRepo.ListByDataset(ctx, datasetID, "")
	if err != nil {
		return nil, err
	}
	if err := ValidateAlias(existing, value, uuid.Nil); err != nil {
		return nil, err
	}

	alias := &models.Alias{
		DatasetID: datasetID,
		Value:     value,
		Data:      data,
		CreatedBy: createdBy,
	}
	if err := s.aliasRepo.Create(ctx, alias); err != nil {
		return nil, err
	}

	s.logger.Info("Created alias",
		zap.String("dataset_id", datasetID.String()),
		zap.String("alias_id", alias.ID.String()))
	return alias, nil
}

func (s *aliasService) Get(ctx context.Context, datasetID, id uuid.UUID) (*models.Alias, error) {
	return s.aliasRepo.GetByID(ctx, datasetID, id)
}

func (s *aliasService) List(ctx context.Context, datasetID uuid.UUID, filter string) ([]*models.Alias, error) {
	return s.aliasRepo.ListByDataset(ctx, datasetID, filter)
}

func (s *aliasService) Update(ctx context.Context, datasetID, id uuid.UUID, value string, data json.RawMessage, updatedBy string) (*models.Alias, error) {
	alias, err := s.aliasRepo.GetByID(ctx, datasetID, id)
	if err != nil {
		return nil, err
	}

	// Same uniqueness check as creation, against all aliases except itself.
	existing, err := s.aliasRepo.ListByDataset(ctx, datasetID, "")
	if err != nil {
		return nil, err
	}
	if err := ValidateAlias(existing, value, id); err != nil {
		return nil, err
	}

	alias.Value = value
	alias.Data = data
	alias.CreatedBy = updatedBy
	if err := s.aliasRepo.Update(ctx, alias); err != nil {
		return nil, err
	}
	return alias, nil
}

func (s *aliasService) Delete(ctx context.Context, datasetID, id uuid.UUID) error {
	return s.aliasRepo.Delete(ctx, datasetID, id)
}

func (s *aliasService) Link(ctx context.Context, datasetID, aliasID, entityID uuid.UUID, createdBy string) error {
	if err := s.aliasRepo.Link(ctx, datasetID, aliasID, entityID, createdBy); err != nil {
		return err
	}
	s.logger.Info("Linked alias",
		zap.String("dataset_id", datasetID.String()),
		zap.String("alias_id", aliasID.String()),
		zap.String("entity_id", entityID.String()))
	return nil
}

func (s *aliasService) Unlink(ctx context.Context, datasetID, aliasID uuid.UUID) error {
	return s.aliasRepo.Unlink(ctx, datasetID, aliasID)
}
