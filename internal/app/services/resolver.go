package services

import (
	"github.com/yigit/photoalbum/internal/app/models"
)

// KeySet is a set of parent keys loaded once per import run.
type KeySet map[string]struct{}

// NewKeySet builds a set from keys.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts k.
func (s KeySet) Add(k string) {
	s[k] = struct{}{}
}

// Has reports whether k is present. The empty key is never present.
func (s KeySet) Has(k string) bool {
	if k == "" {
		return false
	}
	_, ok := s[k]
	return ok
}

// SchoolResolution splits candidate schools by whether their state exists.
type SchoolResolution struct {
	Admissible []*models.School
	// Orphans keeps the rejected schools in input order.
	Orphans []models.SkippedSchool
	// MissingParentKeys holds each unknown state code once, in first-seen order.
	MissingParentKeys []string
}

// ResolveSchools excludes schools whose state code is blank or unknown.
// stateNames maps every valid state code to its name and is used to fill a
// blank denormalized state name.
func ResolveSchools(schools []*models.School, stateNames map[string]string) SchoolResolution {
	res := SchoolResolution{
		Admissible:        make([]*models.School, 0, len(schools)),
		MissingParentKeys: []string{},
	}
	seen := KeySet{}

	for _, s := range schools {
		name, ok := stateNames[s.StateCode]
		if !ok || s.StateCode == "" {
			res.Orphans = append(res.Orphans, models.SkippedSchool{Schnum: s.Schnum, StateCode: s.StateCode})
			if s.StateCode != "" && !seen.Has(s.StateCode) {
				seen.Add(s.StateCode)
				res.MissingParentKeys = append(res.MissingParentKeys, s.StateCode)
			}
			continue
		}
		if s.StateName == "" {
			s.StateName = name
		}
		res.Admissible = append(res.Admissible, s)
	}

	return res
}

// ResolveStudents links each student to its school by schnum. Students whose
// school is unknown keep a nil SchoolID; their reg_no values are returned.
// Unlike schools, no student is excluded.
func ResolveStudents(students []*models.Student, schools map[string]*models.School) []string {
	missing := []string{}
	for _, st := range students {
		school, ok := schools[st.Schnum]
		if !ok || st.Schnum == "" {
			st.SchoolID = nil
			missing = append(missing, st.RegNo)
			continue
		}
		id := school.ID
		name := school.Name
		st.SchoolID = &id
		st.SchoolName = &name
	}
	return missing
}
