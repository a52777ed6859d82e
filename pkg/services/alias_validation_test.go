package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/refdata-io/reconcile-engine/pkg/apperrors"
	"github.com/refdata-io/reconcile-engine/pkg/models"
)

func TestValidateAlias(t *testing.T) {
	existingID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	existing := []*models.Alias{
		{ID: existingID, Value: "Acme Corp."},
	}

	tests := []struct {
		name        string
		candidate   string
		excludingID uuid.UUID
		wantErr     error
	}{
		{
			name:      "new value passes",
			candidate: "Globex",
		},
		{
			name:      "exact duplicate fails",
			candidate: "Acme Corp.",
			wantErr:   apperrors.ErrDuplicateAlias,
		},
		{
			name:      "normalized duplicate fails",
			candidate: "acme---CORP",
			wantErr:   apperrors.ErrDuplicateAlias,
		},
		{
			name:        "updating the record itself passes",
			candidate:   "ACME Corp",
			excludingID: existingID,
		},
		{
			name:      "over-length value fails",
			candidate: strings.Repeat("x", models.MaxAliasLength+1),
			wantErr:   apperrors.ErrValueTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAlias(existing, tt.candidate, tt.excludingID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAliasEmptySnapshot(t *testing.T) {
	assert.NoError(t, ValidateAlias(nil, "anything", uuid.Nil))
}
