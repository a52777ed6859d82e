package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
	"github.com/refdata-io/reconcile-engine/pkg/database"
	"github.com/refdata-io/reconcile-engine/pkg/match"
	"github.com/refdata-io/reconcile-engine/pkg/models"
)

// AliasRepository provides data access for aliases and their entity links,
// and exposes the read snapshot the matching engine builds its index from.
type AliasRepository interface {
	Create(ctx context.Context, alias *models.Alias) error
	GetByID(ctx context.Context, datasetID, id uuid.UUID) (*models.Alias, error)
	// GetByNormValue returns the alias whose normalized value equals that of
	// value, or ErrNotFound.
	GetByNormValue(ctx context.Context, datasetID uuid.UUID, value string) (*models.Alias, error)
	// ListByDataset returns the dataset's aliases, optionally filtered by a
	// case-insensitive substring of the raw value.
	ListByDataset(ctx context.Context, datasetID uuid.UUID, filter string) ([]*models.Alias, error)
	Update(ctx context.Context, alias *models.Alias) error
	Delete(ctx context.Context, datasetID, id uuid.UUID) error
	Link(ctx context.Context, datasetID, aliasID, entityID uuid.UUID, createdBy string) error
	Unlink(ctx context.Context, datasetID, aliasID uuid.UUID) error
	// Snapshot returns a consistent read view of the dataset's entities and
	// linked aliases for index construction.
	Snapshot(ctx context.Context, datasetID uuid.UUID) (*models.Snapshot, error)
}

type aliasRepository struct {
	db *database.DB
}

// NewAliasRepository creates a new AliasRepository.
func NewAliasRepository(db *database.DB) AliasRepository {
	return &aliasRepository{db: db}
}

var _ AliasRepository = (*aliasRepository)(nil)

const aliasColumns = `
	a.id, a.dataset_id, a.value, l.entity_id, a.data, a.created_by,
	a.created_at, a.updated_at`

func (r *aliasRepository) Create(ctx context.Context, alias *models.Alias) error {
	query := `
		INSERT INTO aliases (dataset_id, value, value_norm, data, created_by)
		VALUES ($1, $2, $3, COALESCE($4, '{}'::jsonb), $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		alias.DatasetID,
		alias.Value,
		match.Normalize(alias.Value).Text,
		alias.Data,
		alias.CreatedBy,
	).Scan(&alias.ID, &alias.CreatedAt, &alias.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateAlias
		}
		return fmt.Errorf("failed to create alias: %w", err)
	}
	return nil
}

func (r *aliasRepository) GetByID(ctx context.Context, datasetID, id uuid.UUID) (*models.Alias, error) {
	query := `
		SELECT ` + aliasColumns + `
		FROM aliases a
		LEFT JOIN links l ON l.alias_id = a.id
		WHERE a.dataset_id = $1 AND a.id = $2`

	return r.scanOne(r.db.QueryRow(ctx, query, datasetID, id))
}

func (r *aliasRepository) GetByNormValue(ctx context.Context, datasetID uuid.UUID, value string) (*models.Alias, error) {
	query := `
		SELECT ` + aliasColumns + `
		FROM aliases a
		LEFT JOIN links l ON l.alias_id = a.id
		WHERE a.dataset_id = $1 AND a.value_norm = $2`

	return r.scanOne(r.db.QueryRow(ctx, query, datasetID, match.Normalize(value).Text))
}

func (r *aliasRepository) ListByDataset(ctx context.Context, datasetID uuid.UUID, filter string) ([]*models.Alias, error) {
	query := `
		SELECT ` + aliasColumns + `
		FROM aliases a
		LEFT JOIN links l ON l.alias_id = a.id
		WHERE a.dataset_id = $1`
	args := []any{datasetID}

	if filter != "" {
		query += ` AND a.value ILIKE '%' || $2 || '%'`
		args = append(args, filter)
	}
	query += ` ORDER BY a.value, a.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*models.Alias
	for rows.Next() {
		var a models.Alias
		if err := rows.Scan(&a.ID, &a.DatasetID, &a.Value, &a.EntityID, &a.Data, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases = append(aliases, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aliases: %w", err)
	}
	return aliases, nil
}

func (r *aliasRepository) Update(ctx context.Context, alias *models.Alias) error {
	query := `
		UPDATE aliases
		SET value = $3, value_norm = $4, data = COALESCE($5, '{}'::jsonb),
		    created_by = $6, updated_at = now()
		WHERE dataset_id = $1 AND id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		alias.DatasetID,
		alias.ID,
		alias.Value,
		match.Normalize(alias.Value).Text,
		alias.Data,
		alias.CreatedBy,
	).Scan(&alias.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateAlias
		}
		return fmt.Errorf("failed to update alias: %w", err)
	}
	return nil
}

func (r *aliasRepository) Delete(ctx context.Context, datasetID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM aliases WHERE dataset_id = $1 AND id = $2`, datasetID, id)
	if err != nil {
		return fmt.Errorf("failed to delete alias: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *aliasRepository) Link(ctx context.Context, datasetID, aliasID, entityID uuid.UUID, createdBy string) error {
	// Both sides must belong to the dataset; the link is replaced if the
	// alias is already linked elsewhere.
	query := `
		INSERT INTO links (alias_id, entity_id, created_by)
		SELECT a.id, e.id, $4
		FROM aliases a, entities e
		WHERE a.id = $2 AND a.dataset_id = $1
		  AND e.id = $3 AND e.dataset_id = $1
		ON CONFLICT (alias_id) DO UPDATE
		SET entity_id = EXCLUDED.entity_id, created_by = EXCLUDED.created_by`

	result, err := r.db.Exec(ctx, query, datasetID, aliasID, entityID, createdBy)
	if err != nil {
		return fmt.Errorf("failed to link alias: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *aliasRepository) Unlink(ctx context.Context, datasetID, aliasID uuid.UUID) error {
	query := `
		DELETE FROM links l
		USING aliases a
		WHERE l.alias_id = a.id AND a.dataset_id = $1 AND a.id = $2`

	result, err := r.db.Exec(ctx, query, datasetID, aliasID)
	if err != nil {
		return fmt.Errorf("failed to unlink alias: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *aliasRepository) Snapshot(ctx context.Context, datasetID uuid.UUID) (*models.Snapshot, error) {
	// A read-only repeatable-read transaction gives the index a consistent
	// view even while aliases are being edited concurrently.
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snapshot := &models.Snapshot{DatasetID: datasetID}

	rows, err := tx.Query(ctx, `
		SELECT id, dataset_id, name, entity_type, created_at, updated_at
		FROM entities
		WHERE dataset_id = $1`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot entities: %w", err)
	}
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(&e.ID, &e.DatasetID, &e.Name, &e.Type, &e.CreatedAt, &e.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan snapshot entity: %w", err)
		}
		snapshot.Entities = append(snapshot.Entities, &e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot entities: %w", err)
	}

	rows, err = tx.Query(ctx, `
		SELECT a.value, l.entity_id
		FROM aliases a
		JOIN links l ON l.alias_id = a.id
		WHERE a.dataset_id = $1`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot aliases: %w", err)
	}
	for rows.Next() {
		var sa models.SnapshotAlias
		if err := rows.Scan(&sa.Value, &sa.EntityID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan snapshot alias: %w", err)
		}
		snapshot.Aliases = append(snapshot.Aliases, sa)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot aliases: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot transaction: %w", err)
	}
	return snapshot, nil
}

func (r *aliasRepository) scanOne(row pgx.Row) (*models.Alias, error) {
	var a models.Alias
	err := row.Scan(&a.ID, &a.DatasetID, &a.Value, &a.EntityID, &a.Data, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan alias: %w", err)
	}
	return &a, nil
}
