package models

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a canonical record a query may resolve to. Its display name is
// itself treated as an alias during matching.
type Entity struct {
	ID        uuid.UUID `json:"id"`
	DatasetID uuid.UUID `json:"dataset_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	// LinkCount is the number of aliases currently linked to this entity.
	// Populated on list/get reads, not stored.
	LinkCount int       `json:"link_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
