package host

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/phaser/game"
	"github.com/oomph-ac/phaser/oerror"
	"github.com/oomph-ac/phaser/phase"
	"github.com/sandertv/gophertunnel/minecraft/text"
)

// Participant is a phase.Participant backed by a dragonfly player. Its methods resolve the player
// against the transaction of the tick currently driven by the Host, so they only work when called from
// a scheduler callback. Outside a tick, every query returns oerror.ErrUnavailable.
type Participant struct {
	host   *Host
	handle *world.EntityHandle
	id     uuid.UUID
	name   string
}

var _ phase.Participant = (*Participant)(nil)

// ID ...
func (p *Participant) ID() uuid.UUID {
	return p.id
}

// Name ...
func (p *Participant) Name() string {
	return p.name
}

// Player returns the dragonfly player behind p in the transaction of the current tick.
func (p *Participant) Player() (*player.Player, error) {
	tx := p.host.tx.Load()
	if tx == nil {
		return nil, oerror.ErrUnavailable
	}
	e, ok := p.handle.Entity(tx)
	if !ok {
		return nil, oerror.ErrGone
	}
	pl, ok := e.(*player.Player)
	if !ok {
		return nil, oerror.ErrGone
	}
	return pl, nil
}

// Valid reports whether the player is still connected and, during a tick, still present in the world
// driven by the Host.
func (p *Participant) Valid() bool {
	if !p.host.connected(p.id) {
		return false
	}
	if p.host.tx.Load() == nil {
		return true
	}
	_, err := p.Player()
	return err == nil
}

// Velocity returns the velocity of the player in blocks per tick.
func (p *Participant) Velocity() (mgl64.Vec3, error) {
	pl, err := p.Player()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return pl.Velocity(), nil
}

// SetVelocity ...
func (p *Participant) SetVelocity(vel mgl64.Vec3) error {
	pl, err := p.Player()
	if err != nil {
		return err
	}
	pl.SetVelocity(vel)
	return nil
}

// Position ...
func (p *Participant) Position() (mgl64.Vec3, error) {
	pl, err := p.Player()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return pl.Position(), nil
}

// ViewOrigin returns the eye position of the player.
func (p *Participant) ViewOrigin() (mgl64.Vec3, error) {
	pl, err := p.Player()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return pl.Position().Add(mgl64.Vec3{0, pl.EyeHeight()}), nil
}

// ViewDirection returns the unit vector the player is looking along.
func (p *Participant) ViewDirection() (mgl64.Vec3, error) {
	pl, err := p.Player()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	rot := pl.Rotation()
	return game.Vec32To64(game.DirectionVector(float32(rot.Yaw()), float32(rot.Pitch()))), nil
}

// ObstructionProbe reports whether any block with a collision box lies on the ray from origin along
// direction, up to maxDistance blocks away.
func (p *Participant) ObstructionProbe(origin, direction mgl64.Vec3, maxDistance float64) (bool, error) {
	tx := p.host.tx.Load()
	if tx == nil {
		return false, oerror.ErrUnavailable
	}
	for vec := range game.TraceBlocks(origin, direction, maxDistance) {
		pos := cube.PosFromVec3(game.Vec32To64(vec))
		if len(tx.Block(pos).Model().BBox(pos, tx)) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Mode ...
func (p *Participant) Mode() (phase.Mode, error) {
	pl, err := p.Player()
	if err != nil {
		return "", err
	}
	return ModeOf(pl.GameMode())
}

// SetMode ...
func (p *Participant) SetMode(mode phase.Mode) error {
	gm, err := GameModeOf(mode)
	if err != nil {
		return err
	}
	pl, err := p.Player()
	if err != nil {
		return err
	}
	pl.SetGameMode(gm)
	return nil
}

// Message sends a chat message to the player. It does nothing outside a tick.
func (p *Participant) Message(msg string) {
	if pl, err := p.Player(); err == nil {
		pl.Message(text.Colourf("<grey>[phaser]</grey> %s", msg))
	}
}

// Exec runs f with the player of p in whatever world it is currently in, from any goroutine other than
// the one driving that world. It returns false if the player is gone.
func (p *Participant) Exec(f func(pl *player.Player)) bool {
	return p.handle.ExecWorld(func(_ *world.Tx, e world.Entity) {
		if pl, ok := e.(*player.Player); ok {
			f(pl)
		}
	})
}
