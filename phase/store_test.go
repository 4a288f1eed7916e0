package phase

import (
	"testing"

	"github.com/google/uuid"
)

func TestStoreOrder(t *testing.T) {
	s := NewStore()
	a, b, c := newMockParticipant("a", ModeSurvival), newMockParticipant("b", ModeSurvival), newMockParticipant("c", ModeSurvival)
	for _, p := range []*mockParticipant{a, b, c} {
		s.Put(p, &Record{})
	}
	if !s.Delete(b.id) || s.Delete(b.id) {
		t.Fatal("expected b to be deleted exactly once")
	}

	var names []string
	s.Each(func(_ uuid.UUID, p Participant, _ *Record) bool {
		names = append(names, p.Name())
		return true
	})
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Fatalf("expected tracking order [a c], got %v", names)
	}
	if ids := s.IDs(); len(ids) != 2 || ids[0] != a.id {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestStoreRefreshKeepsRecord(t *testing.T) {
	s := NewStore()
	p := newMockParticipant("p", ModeSurvival)
	rec := &Record{State: StatePhasing}
	s.Put(p, rec)

	replacement := *p
	s.Refresh(&replacement)
	got, _ := s.Get(p.id)
	handle, _ := s.Participant(p.id)
	if got != rec || handle != Participant(&replacement) {
		t.Fatal("expected refresh to replace the handle and keep the record")
	}
	if s.Len() != 1 {
		t.Fatalf("expected one record, got %d", s.Len())
	}
}

func TestStateStrings(t *testing.T) {
	if StateEntering.String() != "entering" || State(9).String() != "state(9)" {
		t.Fatal("unexpected state names")
	}
	if ExitReasonPathClear.String() != "path clear" {
		t.Fatal("unexpected exit reason name")
	}
}

func TestStoreSnapshotCopies(t *testing.T) {
	s := NewStore()
	p := newMockParticipant("p", ModeSurvival)
	rec := &Record{State: StatePhasing, PhasedTicks: 3}
	s.Put(p, rec)

	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].PhasedTicks != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	snap[0].PhasedTicks = 10
	if rec.PhasedTicks != 3 {
		t.Fatal("expected snapshot to hold copies")
	}
}
