package host

import (
	"github.com/oomph-ac/phaser/game"
	"github.com/oomph-ac/phaser/phase"
	"github.com/oomph-ac/phaser/probe"
	"github.com/oomph-ac/phaser/scheduler"
	"github.com/sandertv/gophertunnel/minecraft/text"
	"go.uber.org/atomic"
)

// SpeedHUD is a phase.Feedback showing the current speed of a player in their tip bar, coloured by how it
// compares to the phase thresholds. It runs as its own scheduler task.
type SpeedHUD struct {
	p     *Participant
	sched phase.Scheduler
	h     scheduler.Handle

	entry, exit atomic.Float64
}

// HUDFactory returns a phase.FeedbackFactory creating a SpeedHUD updated every interval ticks for every
// player hosted by a Host. Participants of other hosts get no feedback.
func HUDFactory(sched phase.Scheduler, interval int) phase.FeedbackFactory {
	return func(p phase.Participant, entry, exit float64) phase.Feedback {
		participant, ok := p.(*Participant)
		if !ok {
			return nil
		}
		hud := &SpeedHUD{p: participant, sched: sched}
		hud.SetThresholds(entry, exit)
		hud.h = sched.RunEvery(hud.render, interval)
		return hud
	}
}

// SetThresholds ...
func (hud *SpeedHUD) SetThresholds(entry, exit float64) {
	hud.entry.Store(entry)
	hud.exit.Store(exit)
}

// Close stops updating the tip bar.
func (hud *SpeedHUD) Close() {
	hud.sched.Cancel(hud.h)
}

func (hud *SpeedHUD) render() {
	pl, err := hud.p.Player()
	if err != nil {
		return
	}
	speed, err := probe.Speed(hud.p)
	if err != nil {
		return
	}
	pl.SendTip(speedTip(speed, hud.entry.Load(), hud.exit.Load()))
}

// speedTip formats speed for the tip bar: red at or above the entry speed, yellow between the two
// thresholds and green below the exit speed.
func speedTip(speed, entry, exit float64) string {
	colour := "green"
	switch {
	case speed >= entry:
		colour = "red"
	case speed >= exit:
		colour = "yellow"
	}
	return text.Colourf("<%s>%v</%s> <grey>b/s (%v/%v)</grey>", colour, game.Round64(speed, 1), colour, entry, exit)
}
