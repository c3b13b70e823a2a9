package cellstore

import "sync"

// Store is the shared id -> *Record map. GetOrInsert is idempotent:
// concurrent callers for the same id always receive the same *Record,
// mirroring the read-mostly double-checked-insert contract of spec §4.1 —
// sync.Map's LoadOrStore already gives us that race-free idempotency
// without a bespoke upgrade-from-read-lock dance.
type Store struct {
	cells sync.Map // string -> *Record
}

// New constructs an empty Store.
func New() *Store {
	return &Store{}
}

// GetOrInsert returns id's record, creating a blank one on first
// reference (spec §3's lifecycle: "Cells are created on first mention").
func (s *Store) GetOrInsert(id string) *Record {
	if v, ok := s.cells.Load(id); ok {
		return v.(*Record)
	}
	actual, _ := s.cells.LoadOrStore(id, NewRecord())
	return actual.(*Record)
}

// Get returns id's record if it has ever been referenced.
func (s *Store) Get(id string) (*Record, bool) {
	v, ok := s.cells.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Record), true
}
