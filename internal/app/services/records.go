package services

import (
	"strconv"
	"strings"

	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/extract"
	"github.com/yigit/photoalbum/internal/pkg/helpers"
)

// Accepted column names per field, in order of preference.
var (
	stateCodeFields   = []string{"CODE", "STATE_CODE"}
	stateNameFields   = []string{"STATE", "NAME", "STATE_NAME"}
	stateSchoolFields = []string{"SCHOOLS", "SCHOOLS_COUNT", "SCHOOL_COUNT"}

	schoolNumFields       = []string{"SCHNUM", "SCH_NUM"}
	schoolNameFields      = []string{"SCH_NAME", "SCHOOL_NAME", "NAME"}
	schoolStateFields     = []string{"STATE_CODE", "STATE"}
	schoolStateNameFields = []string{"STATE_NAME"}

	studentRegFields    = []string{"REG_NO", "REGNO"}
	studentSerFields    = []string{"SER_NO", "SERNO"}
	studentNameFields   = []string{"CAND_NAME", "NAME"}
	studentSchoolFields = []string{"SCHNUM", "SCH_NUM"}
	studentBatchFields  = []string{"BATCH"}
)

// StateFromRecord builds a State. CODE and one of the name fields are required.
func StateFromRecord(rec extract.Record) (*models.State, error) {
	code := rec.Get(stateCodeFields...)
	if code == "" {
		return nil, apperrors.NewMissingFieldError(models.StageStates, "CODE", rec.Row)
	}
	name := rec.Get(stateNameFields...)
	if name == "" {
		return nil, apperrors.NewMissingFieldError(models.StageStates, "STATE", rec.Row)
	}

	return &models.State{
		Code:        code,
		Name:        name,
		SchoolCount: parseCount(rec.Get(stateSchoolFields...)),
	}, nil
}

// SchoolFromRecord builds a School. SCHNUM and the school name are required;
// an empty state code is left for the resolver to classify.
func SchoolFromRecord(rec extract.Record) (*models.School, error) {
	schnum := rec.Get(schoolNumFields...)
	if schnum == "" {
		return nil, apperrors.NewMissingFieldError(models.StageSchools, "SCHNUM", rec.Row)
	}
	name := rec.Get(schoolNameFields...)
	if name == "" {
		return nil, apperrors.NewMissingFieldError(models.StageSchools, "SCH_NAME", rec.Row)
	}

	return &models.School{
		Schnum:    schnum,
		Name:      name,
		StateCode: rec.Get(schoolStateFields...),
		StateName: rec.Get(schoolStateNameFields...),
		Custodian: helpers.NullableString(rec.Get("CUSTODIAN")),
		Town:      helpers.NullableString(rec.Get("TOWN")),
	}, nil
}

// StudentFromRecord builds a Student. REG_NO and CAND_NAME are required;
// BATCH falls back to defaultBatch.
func StudentFromRecord(rec extract.Record, defaultBatch string) (*models.Student, error) {
	regNo := rec.Get(studentRegFields...)
	if regNo == "" {
		return nil, apperrors.NewMissingFieldError(models.StageStudents, "REG_NO", rec.Row)
	}
	name := rec.Get(studentNameFields...)
	if name == "" {
		return nil, apperrors.NewMissingFieldError(models.StageStudents, "CAND_NAME", rec.Row)
	}
	batch := rec.Get(studentBatchFields...)
	if batch == "" {
		batch = defaultBatch
	}

	return &models.Student{
		Batch:    batch,
		Schnum:   rec.Get(studentSchoolFields...),
		RegNo:    regNo,
		SerNo:    rec.Get(studentSerFields...),
		CandName: name,
	}, nil
}

// parseCount reads a numeric dBase field; "120", "120.00" and blanks are all accepted.
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
