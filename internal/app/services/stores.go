package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/app/repositories"
	"github.com/yigit/photoalbum/internal/pkg/filestorage"
)

// StateStore persists states.
type StateStore interface {
	UpsertStates(ctx context.Context, states []*models.State) (int, error)
	ListStates(ctx context.Context) ([]*models.State, error)
}

// SchoolStore persists schools.
type SchoolStore interface {
	UpsertSchools(ctx context.Context, schools []*models.School) (int, error)
	ListSchools(ctx context.Context) ([]*models.School, error)
}

// StudentStore persists students and their photo paths.
type StudentStore interface {
	InsertStudents(ctx context.Context, students []*models.Student) (int, error)
	FindByRegNo(ctx context.Context, regNo string) (*models.Student, error)
	SetPhotoPath(ctx context.Context, id uuid.UUID, path string) error
	SetPhotoPaths(ctx context.Context, matches []models.PhotoMatch) ([]string, error)
	MaxPhotoBatch() int
	CountsByState(ctx context.Context) (map[string]int, error)
	CountsBySchool(ctx context.Context) (map[string]int, error)
}

var (
	_ StateStore   = (*repositories.StateRepository)(nil)
	_ SchoolStore  = (*repositories.SchoolRepository)(nil)
	_ StudentStore = (*repositories.StudentRepository)(nil)

	_ filestorage.PhotoStorage = (*filestorage.LocalStorage)(nil)
)
