package phase

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
)

type entry struct {
	participant Participant
	record      *Record
}

// Store holds one Record per tracked participant, in the order the participants started being tracked.
// A Store is not safe for concurrent use: the Machine owning it serialises all access.
type Store struct {
	entries *orderedmap.OrderedMap[uuid.UUID, *entry]
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: orderedmap.NewOrderedMap[uuid.UUID, *entry]()}
}

// Get returns the record of the participant with the id passed.
func (s *Store) Get(id uuid.UUID) (*Record, bool) {
	e, ok := s.entries.Get(id)
	if !ok {
		return nil, false
	}
	return e.record, true
}

// Participant returns the last handle stored for the participant with the id passed.
func (s *Store) Participant(id uuid.UUID) (Participant, bool) {
	e, ok := s.entries.Get(id)
	if !ok {
		return nil, false
	}
	return e.participant, true
}

// Put stores rec for p, replacing any record p already had.
func (s *Store) Put(p Participant, rec *Record) {
	s.entries.Set(p.ID(), &entry{participant: p, record: rec})
}

// Refresh replaces the handle kept for an already tracked participant, keeping its record.
func (s *Store) Refresh(p Participant) {
	if e, ok := s.entries.Get(p.ID()); ok {
		e.participant = p
	}
}

// Delete removes the record of the participant with the id passed. It returns false if there was none.
func (s *Store) Delete(id uuid.UUID) bool {
	return s.entries.Delete(id)
}

// Len returns the amount of tracked participants.
func (s *Store) Len() int {
	return s.entries.Len()
}

// IDs returns the ids of all tracked participants in tracking order.
func (s *Store) IDs() []uuid.UUID {
	return s.entries.Keys()
}

// Each calls f for every tracked participant in tracking order, until f returns false. f must not add
// or remove records; collect the ids and do so after Each returns.
func (s *Store) Each(f func(id uuid.UUID, p Participant, rec *Record) bool) {
	for el := s.entries.Front(); el != nil; el = el.Next() {
		if !f(el.Key, el.Value.participant, el.Value.record) {
			return
		}
	}
}

// Snapshot returns copies of all records in tracking order.
func (s *Store) Snapshot() []Record {
	recs := make([]Record, 0, s.entries.Len())
	for el := s.entries.Front(); el != nil; el = el.Next() {
		recs = append(recs, *el.Value.record)
	}
	return recs
}
