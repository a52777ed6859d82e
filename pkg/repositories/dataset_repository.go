package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
	"github.com/refdata-io/reconcile-engine/pkg/database"
	"github.com/refdata-io/reconcile-engine/pkg/models"
)

// DatasetRepository provides data access for datasets.
type DatasetRepository interface {
	Create(ctx context.Context, dataset *models.Dataset) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dataset, error)
	GetByName(ctx context.Context, name string) (*models.Dataset, error)
	List(ctx context.Context) ([]*models.Dataset, error)
	Update(ctx context.Context, dataset *models.Dataset) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type datasetRepository struct {
	db *database.DB
}

// NewDatasetRepository creates a new DatasetRepository.
func NewDatasetRepository(db *database.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

var _ DatasetRepository = (*datasetRepository)(nil)

func (r *datasetRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	query := `
		INSERT INTO datasets (name, label)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, dataset.Name, dataset.Label).
		Scan(&dataset.ID, &dataset.CreatedAt, &dataset.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

func (r *datasetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	query := `
		SELECT id, name, label, created_at, updated_at
		FROM datasets
		WHERE id = $1`

	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *datasetRepository) GetByName(ctx context.Context, name string) (*models.Dataset, error) {
	query := `
		SELECT id, name, label, created_at, updated_at
		FROM datasets
		WHERE name = $1`

	return r.scanOne(r.db.QueryRow(ctx, query, name))
}

func (r *datasetRepository) List(ctx context.Context) ([]*models.Dataset, error) {
	query := `
		SELECT id, name, label, created_at, updated_at
		FROM datasets
		ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*models.Dataset
	for rows.Next() {
		var ds models.Dataset
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Label, &ds.CreatedAt, &ds.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, &ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate datasets: %w", err)
	}
	return datasets, nil
}

func (r *datasetRepository) Update(ctx context.Context, dataset *models.Dataset) error {
	query := `
		UPDATE datasets
		SET name = $2, label = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, dataset.ID, dataset.Name, dataset.Label).
		Scan(&dataset.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	return nil
}

func (r *datasetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *datasetRepository) scanOne(row pgx.Row) (*models.Dataset, error) {
	var ds models.Dataset
	err := row.Scan(&ds.ID, &ds.Name, &ds.Label, &ds.CreatedAt, &ds.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan dataset: %w", err)
	}
	return &ds, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
