package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/refdata-io/reconcile-engine/pkg/models"
	"github.com/refdata-io/reconcile-engine/pkg/repositories"
)

// DatasetService manages dataset namespaces.
type DatasetService interface {
	Create(ctx context.Context, name, label string) (*models.Dataset, error)
	Get(ctx context.Context, name string) (*models.Dataset, error)
	List(ctx context.Context) ([]*models.Dataset, error)
	Delete(ctx context.Context, name string) error
}

type datasetService struct {
	datasetRepo repositories.DatasetRepository
	logger      *zap.Logger
}

// NewDatasetService creates a new dataset service.
func NewDatasetService(datasetRepo repositories.DatasetRepository, logger *zap.Logger) DatasetService {
	return &datasetService{
		datasetRepo: datasetRepo,
		logger:      logger.Named("dataset-service"),
	}
}

var _ DatasetService = (*datasetService)(nil)

func (s *datasetService) Create(ctx context.Context, name, label string) (*models.Dataset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("dataset name must not be empty")
	}

	dataset := &models.Dataset{Name: name, Label: label}
	if err := s.datasetRepo.Create(ctx, dataset); err != nil {
		return nil, err
	}

	s.logger.Info("Created dataset", zap.String("name", name), zap.String("id", dataset.ID.String()))
	return dataset, nil
}

func (s *datasetService) Get(ctx context.Context, name string) (*models.Dataset, error) {
	return s.datasetRepo.GetByName(ctx, name)
}

func (s *datasetService) List(ctx context.Context) ([]*models.Dataset, error) {
	return s.datasetRepo.List(ctx)
}

func (s *datasetService) Delete(ctx context.Context, name string) error {
	dataset, err := s.datasetRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}

	if err := s.datasetRepo.Delete(ctx, dataset.ID); err != nil {
		return err
	}

	s.logger.Info("Deleted dataset", zap.String("name", name))
	return nil
}
