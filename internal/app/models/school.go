package models

import (
	"time"

	"github.com/google/uuid"
)

// School is identified by its natural key Schnum and must reference an existing State.
type School struct {
	ID        uuid.UUID `json:"id"`
	Schnum    string    `json:"schnum"`
	Name      string    `json:"name"`
	StateCode string    `json:"stateCode"`
	StateName string    `json:"stateName"`
	Custodian *string   `json:"custodian,omitempty"`
	Town      *string   `json:"town,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
