package services

import (
	"github.com/google/uuid"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
	"github.com/refdata-io/reconcile-engine/pkg/match"
	"github.com/refdata-io/reconcile-engine/pkg/models"
)

// ValidateAlias checks a candidate alias value against a snapshot of the
// dataset's existing aliases. It fails with ErrDuplicateAlias when another
// record already holds the same normalized value, and with ErrValueTooLong
// when the value exceeds the schema bound. Pass excludingID when updating a
// record so it does not collide with itself; uuid.Nil excludes nothing.
//
// The function is pure: all context arrives through parameters. The unique
// index on (dataset_id, value_norm) remains the backstop for concurrent
// writers that validated against the same snapshot.
func ValidateAlias(existing []*models.Alias, candidate string, excludingID uuid.UUID) error {
	if len(candidate) > models.MaxAliasLength {
		return apperrors.ErrValueTooLong
	}

	norm := match.Normalize(candidate).Text
	for _, a := range existing {
		if a.ID == excludingID {
			continue
		}
		if match.Normalize(a.Value).Text == norm {
			return apperrors.ErrDuplicateAlias
		}
	}
	return nil
}
