package phase

import "github.com/google/uuid"

// Mode changes are applied in two steps. The request is made on the sampling tick: the record moves to
// its transient state and gets a fresh intent. The change itself is applied by a continuation running
// ModeChangeDelay ticks later, which re-validates the participant from scratch. A continuation only acts
// if the record still exists, is still in the transient state and still carries its intent, so a
// continuation firing twice, or for a record that was replaced, is a no-op.

func (m *Machine) requestEnter(p Participant, rec *Record) {
	rec.State = StateEntering
	rec.intent = m.nextIntent()

	id, intent := p.ID(), rec.intent
	m.sched.RunAfter(func() { m.completeEnter(id, intent) }, m.conf.ModeChangeDelay)
}

func (m *Machine) requestExit(p Participant, rec *Record) {
	rec.State = StateExiting
	rec.intent = m.nextIntent()

	id, intent := p.ID(), rec.intent
	m.sched.RunAfter(func() { m.completeExit(id, intent) }, m.conf.ModeChangeDelay)
}

// pending returns the participant and record with the id passed if a continuation with intent is still
// due for it.
func (m *Machine) pending(id uuid.UUID, state State, intent uint64) (Participant, *Record, bool) {
	rec, ok := m.store.Get(id)
	if !ok || rec.State != state || rec.intent != intent {
		return nil, nil, false
	}
	p, _ := m.store.Participant(id)
	return p, rec, true
}

func (m *Machine) completeEnter(id uuid.UUID, intent uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, rec, ok := m.pending(id, StateEntering, intent)
	if !ok {
		return
	}
	m.isolate(p, func() {
		if !p.Valid() {
			m.forget(id)
			return
		}
		mode, err := p.Mode()
		if err != nil {
			m.debugf(p, "unable to read mode before entering: %v", err)
			m.store.Delete(id)
			return
		}
		if mode != rec.PriorMode {
			// Something else changed the mode during the delay. Whatever it is now, it is not ours to touch.
			m.stats.Abandoned++
			m.store.Delete(id)
			m.log.WithField("participant", p.Name()).Infof("phase: mode changed to %s before entry, abandoning", mode)
			return
		}
		if err := p.SetMode(rec.Target); err != nil {
			m.stats.Failures++
			m.store.Delete(id)
			m.log.WithField("participant", p.Name()).Warnf("phase: unable to enter %s: %v", rec.Target, err)
			return
		}

		rec.State = StatePhasing
		rec.intent = 0
		rec.InactiveFrames = 0
		rec.PhasedTicks = 0
		if rec.Ghost {
			m.stats.GhostEntries++
		} else {
			m.stats.LightEntries++
		}
		m.debugf(p, "phasing in %s", rec.Target)
	})
}

func (m *Machine) completeExit(id uuid.UUID, intent uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, rec, ok := m.pending(id, StateExiting, intent)
	if !ok {
		return
	}
	m.isolate(p, func() {
		if !p.Valid() {
			m.forget(id)
			return
		}
		mode, err := p.Mode()
		if err != nil {
			m.debugf(p, "unable to read mode before exiting: %v", err)
			m.store.Delete(id)
			return
		}
		if mode != rec.Target {
			m.stats.Abandoned++
			m.store.Delete(id)
			m.log.WithField("participant", p.Name()).Infof("phase: mode changed to %s before exit, leaving it", mode)
			return
		}
		if err := p.SetMode(rec.PriorMode); err != nil {
			m.stats.Failures++
			m.store.Delete(id)
			m.log.WithField("participant", p.Name()).Warnf("phase: unable to restore %s: %v", rec.PriorMode, err)
			return
		}
		m.restoreMomentum(p, rec)

		switch rec.ExitReason {
		case ExitReasonPathClear:
			m.stats.PathClearExits++
		case ExitReasonDebounce:
			m.stats.DebounceExits++
		}
		m.stats.Exited++

		final := *rec
		final.State = StateNormal
		final.intent = 0
		m.store.Delete(id)
		m.debugf(p, "restored %s (%s)", rec.PriorMode, rec.ExitReason)

		effects := m.effects
		m.dispatch.Submit(func() { effects.PhaseEnded(p, final) })
	})
}

// restoreMomentum gives p back a part of the speed it had when it started phasing, along the direction
// it is looking in now.
func (m *Machine) restoreMomentum(p Participant, rec *Record) {
	speed := rec.StoredVelocity.Len() * m.conf.MomentumFraction
	if speed <= 0 {
		return
	}
	dir, err := p.ViewDirection()
	if err != nil || dir.LenSqr() == 0 {
		m.debugf(p, "unable to restore momentum: no view direction")
		return
	}
	if err := p.SetVelocity(dir.Normalize().Mul(speed)); err != nil {
		m.debugf(p, "unable to restore momentum: %v", err)
	}
}

// restore puts p back in its prior mode right away. Used when the Machine closes.
func (m *Machine) restore(p Participant, rec *Record) {
	if !p.Valid() || rec.Target == "" {
		return
	}
	if mode, err := p.Mode(); err != nil || mode != rec.Target {
		return
	}
	if err := p.SetMode(rec.PriorMode); err != nil {
		m.log.WithField("participant", p.Name()).Warnf("phase: unable to restore %s on close: %v", rec.PriorMode, err)
	}
}
