package roster

import (
	"strings"

	"fee-desk/internal/model"
)

// LookupHook receives every lookup outcome. The presentation layer uses it
// to decide what to do next (focus the amount field, show a miss).
type LookupHook func(admissionNo string, found bool)

type Option func(*Roster)

func WithLookupHook(hook LookupHook) Option {
	return func(r *Roster) {
		r.onLookup = hook
	}
}

// Roster is a read-only index of students keyed by admission number.
type Roster struct {
	records  map[string]model.StudentRecord
	onLookup LookupHook
}

func New(records []model.StudentRecord, opts ...Option) *Roster {
	r := &Roster{
		records: make(map[string]model.StudentRecord, len(records)),
	}
	for _, rec := range records {
		key := normalize(rec.AdmissionNo)
		if key == "" {
			continue
		}
		rec.AdmissionNo = key
		r.records[key] = rec
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Find matches on the trimmed admission number as a string, so "007" and
// "7" are different students.
func (r *Roster) Find(admissionNo string) (model.StudentRecord, bool) {
	key := normalize(admissionNo)
	rec, ok := r.records[key]
	if r.onLookup != nil {
		r.onLookup(key, ok)
	}
	return rec, ok
}

func (r *Roster) Len() int {
	return len(r.records)
}

// WithHook returns a roster sharing the same records with a different hook.
func (r *Roster) WithHook(hook LookupHook) *Roster {
	return &Roster{records: r.records, onLookup: hook}
}

func normalize(admissionNo string) string {
	return strings.TrimSpace(admissionNo)
}
