package extract

import "strings"

// header is shared by every record of one file so that lookups stay O(1)
// without a map allocation per row.
type header struct {
	names []string
	index map[string]int
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func newHeader(names []string) *header {
	h := &header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		h.names[i] = strings.TrimSpace(n)
		key := normalizeName(n)
		if key == "" {
			continue
		}
		if _, dup := h.index[key]; !dup {
			h.index[key] = i
		}
	}
	return h
}

// Record is one raw row of an extract: an ordered mapping of field name to
// string value. No type coercion is applied.
type Record struct {
	h      *header
	values []string
	// Row is the 1-based position of the record among the data rows of the file.
	Row int
}

// NewRecord builds a record from parallel name/value slices.
func NewRecord(names, values []string) Record {
	v := make([]string, len(names))
	copy(v, values)
	return Record{h: newHeader(names), values: v}
}

// Lookup returns the value of a field, matching the name case-insensitively.
func (r Record) Lookup(name string) (string, bool) {
	if r.h == nil {
		return "", false
	}
	i, ok := r.h.index[normalizeName(name)]
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Get returns the first non-empty value among the given aliases.
func (r Record) Get(aliases ...string) string {
	for _, a := range aliases {
		if v, ok := r.Lookup(a); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Has reports whether any of the aliases is a column of the record.
func (r Record) Has(aliases ...string) bool {
	for _, a := range aliases {
		if _, ok := r.Lookup(a); ok {
			return true
		}
	}
	return false
}

// Names returns the field names in file order.
func (r Record) Names() []string {
	if r.h == nil {
		return nil
	}
	return r.h.names
}

// Values returns the field values in file order.
func (r Record) Values() []string {
	return r.values
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.values)
}
