package models

import "time"

// Import stage names
const (
	StageStates   = "states"
	StageSchools  = "schools"
	StageStudents = "students"
)

// SkippedSchool describes a school excluded because its state could not be resolved.
type SkippedSchool struct {
	Schnum    string `json:"schnum"`
	StateCode string `json:"stateCode"`
}

// StageResult is the outcome of one import stage.
type StageResult struct {
	Stage                string          `json:"stage"`
	Imported             int             `json:"importedCount"`
	Skipped              int             `json:"skippedCount"`
	MissingParentKeys    []string        `json:"missingParentKeys"`
	MissingSchoolMatches []string        `json:"missingSchoolMatches"`
	SkippedSchools       []SkippedSchool `json:"skippedSchools,omitempty"`
	StudentsByState      map[string]int  `json:"studentsByState,omitempty"`
	StudentsBySchool     map[string]int  `json:"studentsBySchool,omitempty"`
	Errors               []string        `json:"errors"`
	Failed               bool            `json:"failed"`
}

// ImportOutcome aggregates the three reference-data stages.
type ImportOutcome struct {
	States   *StageResult `json:"states,omitempty"`
	Schools  *StageResult `json:"schools,omitempty"`
	Students *StageResult `json:"students,omitempty"`
}

// PhotoOutcome is returned by the synchronous archive/upload mode.
type PhotoOutcome struct {
	Saved           int      `json:"saved"`
	MissingStudents []string `json:"missingStudents"`
	Errors          []string `json:"errors"`
}

// ScanOutcome is produced by a directory scan.
type ScanOutcome struct {
	Dir           string    `json:"dir"`
	Found         int       `json:"found"`
	Matched       int       `json:"matched"`
	MissingCount  int       `json:"missingCount"`
	Missing       []string  `json:"missing"`
	FailedBatches int       `json:"failedBatches"`
	Unresolved    int       `json:"unresolved"`
	Errors        []string  `json:"errors"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}
