package models

import (
	"time"

	"github.com/google/uuid"
)

// Student is deduplicated by RegNo. SchoolID is nil when the student's
// schnum did not resolve to a School at import time.
type Student struct {
	ID         uuid.UUID  `json:"id"`
	Batch      string     `json:"batch"`
	Schnum     string     `json:"schnum"`
	SchoolName *string    `json:"schoolName,omitempty"`
	RegNo      string     `json:"regNo"`
	SerNo      string     `json:"serNo"`
	CandName   string     `json:"candName"`
	SchoolID   *uuid.UUID `json:"schoolId,omitempty"`
	PhotoPath  *string    `json:"photoPath,omitempty"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt,omitempty"`
}
