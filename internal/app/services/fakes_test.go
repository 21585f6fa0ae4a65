package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/photoalbum/internal/app/models"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
)

// memStore is an in-memory stand-in for the three repositories with the
// same conflict semantics: states and schools upsert, students insert once.
type memStore struct {
	mu       sync.Mutex
	states   map[string]*models.State
	schools  map[string]*models.School
	students map[string]*models.Student

	maxPhotoBatch int
	// failPhotoFlush makes the n-th SetPhotoPaths call (1-based) fail.
	failPhotoFlush int
	photoFlushes   int
	// failStudentInsert makes InsertStudents fail.
	failStudentInsert bool
}

func newMemStore() *memStore {
	return &memStore{
		states:        map[string]*models.State{},
		schools:       map[string]*models.School{},
		students:      map[string]*models.Student{},
		maxPhotoBatch: 32767,
	}
}

func (m *memStore) UpsertStates(_ context.Context, states []*models.State) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range states {
		cp := *s
		m.states[s.Code] = &cp
	}
	return len(states), nil
}

func (m *memStore) ListStates(context.Context) ([]*models.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.State, 0, len(m.states))
	for _, s := range m.states {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) UpsertSchools(_ context.Context, schools []*models.School) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range schools {
		if _, ok := m.states[s.StateCode]; !ok {
			return 0, apperrors.NewStoreWriteError("schools", 0, errors.New("foreign key violation"))
		}
	}
	for _, s := range schools {
		cp := *s
		if existing, ok := m.schools[s.Schnum]; ok {
			cp.ID = existing.ID
		} else if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		m.schools[s.Schnum] = &cp
	}
	return len(schools), nil
}

func (m *memStore) ListSchools(context.Context) ([]*models.School, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.School, 0, len(m.schools))
	for _, s := range m.schools {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) InsertStudents(_ context.Context, students []*models.Student) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStudentInsert {
		return 0, apperrors.NewStoreWriteError("students", 0, errors.New("disk full"))
	}
	for _, s := range students {
		if _, ok := m.students[s.RegNo]; ok {
			continue
		}
		cp := *s
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		m.students[s.RegNo] = &cp
	}
	return len(students), nil
}

func (m *memStore) FindByRegNo(_ context.Context, regNo string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if strings.EqualFold(s.RegNo, regNo) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (m *memStore) SetPhotoPath(_ context.Context, id uuid.UUID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.ID == id {
			p := path
			s.PhotoPath = &p
			return nil
		}
	}
	return apperrors.ErrStudentNotFound
}

func (m *memStore) SetPhotoPaths(_ context.Context, matches []models.PhotoMatch) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photoFlushes++
	if m.failPhotoFlush > 0 && m.photoFlushes == m.failPhotoFlush {
		return nil, apperrors.NewStoreWriteError("students", 0, errors.New("deadlock detected"))
	}
	if len(matches) > m.maxPhotoBatch {
		return nil, apperrors.NewStoreWriteError("students", 0, errors.New("batch too large"))
	}

	byLower := make(map[string]*models.Student, len(m.students))
	for _, s := range m.students {
		byLower[strings.ToLower(s.RegNo)] = s
	}
	var matched []string
	for _, pm := range matches {
		if s, ok := byLower[strings.ToLower(pm.Identifier)]; ok {
			p := pm.Path
			s.PhotoPath = &p
			matched = append(matched, pm.Identifier)
		}
	}
	return matched, nil
}

func (m *memStore) MaxPhotoBatch() int {
	return m.maxPhotoBatch
}

func (m *memStore) CountsByState(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := map[uuid.UUID]*models.School{}
	for _, s := range m.schools {
		byID[s.ID] = s
	}
	out := map[string]int{}
	for _, st := range m.students {
		if st.SchoolID == nil {
			continue
		}
		if sc, ok := byID[*st.SchoolID]; ok {
			out[sc.StateCode]++
		}
	}
	return out, nil
}

func (m *memStore) CountsBySchool(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, st := range m.students {
		if st.Schnum != "" {
			out[st.Schnum]++
		}
	}
	return out, nil
}

func (m *memStore) student(regNo string) *models.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.students[regNo]
}

func (m *memStore) withPhotos() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k, s := range m.students {
		if s.PhotoPath != nil {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
