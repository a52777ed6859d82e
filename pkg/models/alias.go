package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MaxAliasLength is the maximum length of an alias value, matching the
// storage schema's CHECK constraint.
const MaxAliasLength = 5000

// Alias is one textual variant owned by a dataset and, through a link,
// associated with zero or one entity. The pair (dataset, normalized value)
// is unique.
type Alias struct {
	ID        uuid.UUID       `json:"id"`
	DatasetID uuid.UUID       `json:"dataset_id"`
	Value     string          `json:"value"`
	// EntityID is the linked entity, nil when the alias is unlinked.
	EntityID  *uuid.UUID      `json:"entity_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SnapshotAlias is one row of the read snapshot handed to the matching
// engine: linked alias text plus the entity carrying it.
type SnapshotAlias struct {
	Value    string
	EntityID uuid.UUID
}

// Snapshot is a consistent read view of one dataset's entities and linked
// aliases, taken once per index build. The matching engine never queries
// live storage mid-match.
type Snapshot struct {
	DatasetID uuid.UUID
	Entities  []*Entity
	Aliases   []SnapshotAlias
}
