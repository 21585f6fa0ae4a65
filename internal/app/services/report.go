package services

import (
	"github.com/yigit/photoalbum/internal/app/models"
)

// maxReportedErrors bounds the per-record error messages kept in an outcome.
const maxReportedErrors = 100

func newStageResult(stage string) *models.StageResult {
	return &models.StageResult{
		Stage:                stage,
		MissingParentKeys:    []string{},
		MissingSchoolMatches: []string{},
		Errors:               []string{},
	}
}

func newPhotoOutcome() *models.PhotoOutcome {
	return &models.PhotoOutcome{
		MissingStudents: []string{},
		Errors:          []string{},
	}
}

// appendCapped appends v unless list already holds limit entries.
// A non-positive limit means unbounded.
func appendCapped(list []string, limit int, v string) []string {
	if limit > 0 && len(list) >= limit {
		return list
	}
	return append(list, v)
}

func addError(list []string, err error) []string {
	return appendCapped(list, maxReportedErrors, err.Error())
}

// capSkipped keeps the first limit skipped schools.
func capSkipped(list []models.SkippedSchool, limit int) []models.SkippedSchool {
	if limit > 0 && len(list) > limit {
		return list[:limit:limit]
	}
	return list
}

// failStage marks the result as failed and records err.
func failStage(res *models.StageResult, err error) {
	res.Failed = true
	res.Errors = addError(res.Errors, err)
}
