package phase

import (
	"github.com/df-mc/dragonfly/server/event"
	"github.com/oomph-ac/phaser/assert"
	"github.com/oomph-ac/phaser/oerror"
	"github.com/oomph-ac/phaser/probe"
)

// sample takes one speed sample of p and advances its record.
func (m *Machine) sample(p Participant) {
	rec, ok := m.track(p)
	if !ok {
		return
	}
	if rec.State == StateEntering || rec.State == StateExiting {
		// A continuation is pending and will resolve the record on its own.
		return
	}

	reading, err := probe.Sample(p)
	if err != nil {
		if oerror.IsGone(err) {
			m.store.Delete(p.ID())
			return
		}
		m.debugf(p, "velocity unavailable, using last speed %.2f: %v", rec.LastSpeed, err)
		reading.Speed = rec.LastSpeed
	}
	if pos, err := p.Position(); err == nil {
		rec.LastPosition = pos
	}
	rec.LastSpeed = reading.Speed

	switch rec.State {
	case StateNormal:
		m.sampleNormal(p, rec, reading)
	case StatePhasing:
		m.samplePhasing(p, rec, reading.Speed)
	}
}

func (m *Machine) sampleNormal(p Participant, rec *Record, reading probe.Reading) {
	if reading.Speed < m.conf.EntrySpeed {
		return
	}
	mode, err := p.Mode()
	if err != nil {
		m.debugf(p, "unable to read mode, not entering: %v", err)
		return
	}
	if mode == m.conf.GhostMode {
		// Something else put the participant in the ghost mode: it is not ours to manage.
		m.store.Delete(p.ID())
		return
	}
	if mode == m.conf.LightMode {
		// Already invulnerable by other means. Entering from here would make the light mode a prior mode.
		return
	}

	ghost := m.conf.AlwaysGhost || probe.Obstructed(p, m.conf.LookAhead)
	target := m.conf.LightMode
	if ghost {
		target = m.conf.GhostMode
	}

	ctx := event.C(p)
	m.handler.HandleEnter(ctx, target)
	if ctx.Cancelled() {
		m.stats.Vetoed++
		return
	}

	assert.IsTrue(mode != m.conf.GhostMode && mode != m.conf.LightMode, "prior mode %s must not be a phasing mode", mode)
	rec.PriorMode = mode
	rec.StoredVelocity = reading.Velocity
	rec.Target = target
	rec.Ghost = ghost
	rec.InactiveFrames = 0
	rec.PhasedTicks = 0
	rec.ExitReason = ExitReasonNone
	m.requestEnter(p, rec)

	m.debugf(p, "entering %s at %.2f blocks/sec", target, reading.Speed)
}

func (m *Machine) samplePhasing(p Participant, rec *Record, speed float64) {
	if mode, err := p.Mode(); err == nil && mode != rec.Target {
		// The mode was changed from outside while phasing. Give up ownership without touching it.
		m.stats.Abandoned++
		m.store.Delete(p.ID())
		m.log.WithField("participant", p.Name()).Infof("phase: mode changed to %s while phasing, no longer tracking", mode)
		return
	}

	rec.PhasedTicks++
	if speed < m.conf.ExitSpeed {
		rec.InactiveFrames++
	} else {
		rec.InactiveFrames = 0
	}
	if rec.InactiveFrames >= m.conf.DebounceTicks {
		rec.ExitReason = ExitReasonDebounce
		m.requestExit(p, rec)
	}
}
