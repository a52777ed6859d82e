package models

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is a named, isolated namespace of entities and aliases.
// All matching operations are scoped to exactly one dataset.
type Dataset struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
