package host

import (
	"fmt"
	"time"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/oomph-ac/phaser/game"
	"github.com/oomph-ac/phaser/phase"
	"github.com/sandertv/gophertunnel/minecraft/text"
	"github.com/sirupsen/logrus"
)

// MessageEffects is a phase.EndEffects telling players how their phase went once it ends. The message is
// delivered through the world of the player, so MessageEffects must be notified from a goroutine other
// than the one driving that world, such as a worker.Pool.
type MessageEffects struct {
	log *logrus.Logger
}

// NewMessageEffects ...
func NewMessageEffects(log *logrus.Logger) MessageEffects {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return MessageEffects{log: log}
}

// PhaseEnded ...
func (e MessageEffects) PhaseEnded(p phase.Participant, rec phase.Record) {
	msg := endMessage(rec)
	e.log.WithField("participant", p.Name()).Debug(msg)

	participant, ok := p.(*Participant)
	if !ok {
		return
	}
	participant.Exec(func(pl *player.Player) {
		pl.Message(text.Colourf("<grey>[phaser]</grey> %s", msg))
	})
}

// endMessage describes how the phase recorded in rec ended.
func endMessage(rec phase.Record) string {
	d := time.Duration(rec.PhasedTicks) * time.Second / game.TicksPerSecond
	kind := "light"
	if rec.Ghost {
		kind = "ghost"
	}
	return fmt.Sprintf("%s phase ended after %s (%s)", kind, d, rec.ExitReason)
}
