package models

import "time"

// State is identified by its natural key Code.
type State struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	SchoolCount int       `json:"schoolCount"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}
