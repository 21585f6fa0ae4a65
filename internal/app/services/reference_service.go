package services

import (
	"context"

	"github.com/yigit/photoalbum/internal/app/models"
)

// ReferenceService reads back the imported reference data.
type ReferenceService interface {
	ListStates(ctx context.Context) ([]*models.State, error)
	ListSchools(ctx context.Context) ([]*models.School, error)
	StudentCounts(ctx context.Context) (byState, bySchool map[string]int, err error)
}

type referenceServiceImpl struct {
	states   StateStore
	schools  SchoolStore
	students StudentStore
}

// NewReferenceService creates a new reference service instance
func NewReferenceService(states StateStore, schools SchoolStore, students StudentStore) ReferenceService {
	return &referenceServiceImpl{states: states, schools: schools, students: students}
}

func (s *referenceServiceImpl) ListStates(ctx context.Context) ([]*models.State, error) {
	return s.states.ListStates(ctx)
}

func (s *referenceServiceImpl) ListSchools(ctx context.Context) ([]*models.School, error) {
	return s.schools.ListSchools(ctx)
}

// StudentCounts returns student totals keyed by state code and by school number.
func (s *referenceServiceImpl) StudentCounts(ctx context.Context) (map[string]int, map[string]int, error) {
	byState, err := s.students.CountsByState(ctx)
	if err != nil {
		return nil, nil, err
	}
	bySchool, err := s.students.CountsBySchool(ctx)
	if err != nil {
		return nil, nil, err
	}
	return byState, bySchool, nil
}
