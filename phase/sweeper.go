package phase

import (
	"github.com/google/uuid"
	"github.com/oomph-ac/phaser/oerror"
	"github.com/scylladb/go-set/strset"
)

// sweep removes the records of participants that are no longer connected or no longer valid, and returns
// the connected participants that are. Removal is silent: no effects fire for vanished participants.
func (m *Machine) sweep(ps []Participant) []Participant {
	connected := strset.NewWithSize(len(ps))
	live := make([]Participant, 0, len(ps))
	for _, p := range ps {
		if id, ok := m.probeValid(p); ok {
			connected.Add(id.String())
			live = append(live, p)
		}
	}

	var stale []uuid.UUID
	m.store.Each(func(id uuid.UUID, p Participant, _ *Record) bool {
		if !connected.Has(id.String()) {
			stale = append(stale, id)
		} else if _, ok := m.probeValid(p); !ok {
			stale = append(stale, id)
		}
		return true
	})
	for id := range m.feedbacks {
		if !connected.Has(id.String()) {
			stale = append(stale, id)
		}
	}

	for _, id := range stale {
		if rec, ok := m.store.Get(id); ok {
			m.stats.Swept++
			if rec.State != StateNormal {
				m.log.WithField("participant", id.String()).Debugf("phase: dropping %s record of vanished participant", rec.State)
			}
		}
		m.forget(id)
	}
	return live
}

// probeValid returns the id of p and true if p is still valid. A participant whose handle panics on use,
// or whose position reports it gone, is invalid.
func (m *Machine) probeValid(p Participant) (id uuid.UUID, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	id = p.ID()
	if !p.Valid() {
		return id, false
	}
	if _, err := p.Position(); oerror.IsGone(err) {
		return id, false
	}
	return id, true
}
