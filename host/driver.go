package host

import (
	"context"
	"time"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
	"github.com/oomph-ac/phaser/game"
	"github.com/oomph-ac/phaser/scheduler"
	"go.uber.org/atomic"
)

// Callbacks are called by a Driver at the start of a tick, before the scheduler runs.
type Callbacks struct {
	// Join is called for every player added to the Host since the previous tick.
	Join func(p *Participant)
	// Quit is called with the id of every player that quit since the previous tick.
	Quit func(id uuid.UUID)
	// Stop is called from within one last transaction once Run stops ticking.
	Stop func()
}

// Driver ticks a Scheduler from inside the transactions of a world, at game.TicksPerSecond. Every
// scheduler callback, and so every Participant query, runs on the goroutine of that world.
type Driver struct {
	w     *world.World
	host  *Host
	sched *scheduler.Scheduler
	cb    Callbacks

	running atomic.Bool
}

// NewDriver returns a Driver for the players of host living in w.
func NewDriver(w *world.World, host *Host, sched *scheduler.Scheduler, cb Callbacks) *Driver {
	return &Driver{w: w, host: host, sched: sched, cb: cb}
}

// Run ticks until ctx is cancelled. Run returns immediately if the Driver is already running.
func (d *Driver) Run(ctx context.Context) {
	if !d.running.CompareAndSwap(false, true) {
		return
	}
	defer d.running.Store(false)
	defer d.stop()

	t := time.NewTicker(time.Second / game.TicksPerSecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			select {
			case <-d.w.Exec(d.tick):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (d *Driver) stop() {
	if d.cb.Stop == nil {
		return
	}
	<-d.w.Exec(func(tx *world.Tx) {
		d.host.bind(tx)
		defer d.host.bind(nil)
		d.cb.Stop()
	})
}

// Running reports whether Run is currently ticking.
func (d *Driver) Running() bool {
	return d.running.Load()
}

func (d *Driver) tick(tx *world.Tx) {
	d.host.bind(tx)
	defer d.host.bind(nil)

	for _, id := range d.host.takeQuit() {
		if d.cb.Quit != nil {
			d.cb.Quit(id)
		}
	}
	for _, p := range d.host.takeJoined() {
		if d.cb.Join != nil {
			d.cb.Join(p)
		}
	}
	d.sched.Tick()
}
