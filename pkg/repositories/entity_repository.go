package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
	"github.com/refdata-io/reconcile-engine/pkg/database"
	"github.com/refdata-io/reconcile-engine/pkg/models"
)

// EntityRepository provides data access for entities.
type EntityRepository interface {
	Create(ctx context.Context, entity *models.Entity) error
	GetByID(ctx context.Context, datasetID, id uuid.UUID) (*models.Entity, error)
	ListByDataset(ctx context.Context, datasetID uuid.UUID) ([]*models.Entity, error)
	Update(ctx context.Context, entity *models.Entity) error
	Delete(ctx context.Context, datasetID, id uuid.UUID) error
}

type entityRepository struct {
	db *database.DB
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(db *database.DB) EntityRepository {
	return &entityRepository{db: db}
}

var _ EntityRepository = (*entityRepository)(nil)

func (r *entityRepository) Create(ctx context.Context, entity *models.Entity) error {
	query := `
		INSERT INTO entities (dataset_id, name, entity_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, entity.DatasetID, entity.Name, entity.Type).
		Scan(&entity.ID, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	return nil
}

func (r *entityRepository) GetByID(ctx context.Context, datasetID, id uuid.UUID) (*models.Entity, error) {
	query := `
		SELECT e.id, e.dataset_id, e.name, e.entity_type,
		       (SELECT count(*) FROM links l WHERE l.entity_id = e.id),
		       e.created_at, e.updated_at
		FROM entities e
		WHERE e.dataset_id = $1 AND e.id = $2`

	var e models.Entity
	err := r.db.QueryRow(ctx, query, datasetID, id).
		Scan(&e.ID, &e.DatasetID, &e.Name, &e.Type, &e.LinkCount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return &e, nil
}

func (r *entityRepository) ListByDataset(ctx context.Context, datasetID uuid.UUID) ([]*models.Entity, error) {
	query := `
		SELECT e.id, e.dataset_id, e.name, e.entity_type,
		       (SELECT count(*) FROM links l WHERE l.entity_id = e.id),
		       e.created_at, e.updated_at
		FROM entities e
		WHERE e.dataset_id = $1
		ORDER BY e.name, e.id`

	rows, err := r.db.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(&e.ID, &e.DatasetID, &e.Name, &e.Type, &e.LinkCount, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}
	return entities, nil
}

func (r *entityRepository) Update(ctx context.Context, entity *models.Entity) error {
	query := `
		UPDATE entities
		SET name = $3, entity_type = $4, updated_at = now()
		WHERE dataset_id = $1 AND id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, entity.DatasetID, entity.ID, entity.Name, entity.Type).
		Scan(&entity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update entity: %w", err)
	}
	return nil
}

func (r *entityRepository) Delete(ctx context.Context, datasetID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM entities WHERE dataset_id = $1 AND id = $2`, datasetID, id)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
