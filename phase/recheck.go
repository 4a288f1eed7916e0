package phase

import (
	"github.com/google/uuid"
	"github.com/oomph-ac/phaser/probe"
)

// recheck scans the path ahead of every participant phasing in the ghost mode, and ends phasing early
// for those whose path is clear again. A failed scan counts as obstructed, so phasing continues.
// Participants in the light mode are not re-checked: their path was clear when they started.
func (m *Machine) recheck() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}

	type candidate struct {
		p   Participant
		rec *Record
	}
	var candidates []candidate
	m.store.Each(func(_ uuid.UUID, p Participant, rec *Record) bool {
		if rec.State == StatePhasing && rec.Ghost && rec.PhasedTicks >= m.conf.RecheckInterval {
			candidates = append(candidates, candidate{p: p, rec: rec})
		}
		return true
	})

	for _, c := range candidates {
		m.isolate(c.p, func() {
			if probe.Obstructed(c.p, m.conf.LookAhead) {
				return
			}
			c.rec.ExitReason = ExitReasonPathClear
			m.requestExit(c.p, c.rec)
			m.debugf(c.p, "path ahead is clear, exiting early")
		})
	}
}
