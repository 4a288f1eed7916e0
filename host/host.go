package host

import (
	"sync"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
	"github.com/oomph-ac/phaser/phase"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Host is a phase.Host holding the players of a dragonfly server. Players are added using Add once the
// server accepted them and are removed when they quit.
type Host struct {
	log *logrus.Logger

	mu      sync.Mutex
	players *orderedmap.OrderedMap[uuid.UUID, *Participant]
	joined  []*Participant
	quit    []uuid.UUID

	// tx is the transaction of the tick currently being driven. It is only set while a tick runs.
	tx atomic.Pointer[world.Tx]
}

var _ phase.Host = (*Host)(nil)

// New creates an empty Host.
func New(log *logrus.Logger) *Host {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Host{
		log:     log,
		players: orderedmap.NewOrderedMap[uuid.UUID, *Participant](),
	}
}

// Add starts hosting p and attaches a handler to it that removes it again once it quits. The player is
// passed to the Join callback of the Driver on its next tick.
func (h *Host) Add(p *player.Player) *Participant {
	participant := h.add(p.H(), p.UUID(), p.Name())
	p.Handle(&quitHandler{h: h})
	return participant
}

func (h *Host) add(handle *world.EntityHandle, id uuid.UUID, name string) *Participant {
	participant := &Participant{host: h, handle: handle, id: id, name: name}

	h.mu.Lock()
	h.players.Set(id, participant)
	h.joined = append(h.joined, participant)
	h.mu.Unlock()

	h.log.Debugf("host: %s joined", name)
	return participant
}

// Remove stops hosting the player with the id passed. Its id is passed to the Quit callback of the
// Driver on its next tick.
func (h *Host) Remove(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.players.Get(id)
	if !ok {
		return
	}
	h.players.Delete(id)
	h.quit = append(h.quit, id)
	h.log.Debugf("host: %s quit", p.name)
}

// Participants returns every hosted player in the order they were added.
func (h *Host) Participants() []phase.Participant {
	h.mu.Lock()
	defer h.mu.Unlock()

	ps := make([]phase.Participant, 0, h.players.Len())
	for el := h.players.Front(); el != nil; el = el.Next() {
		ps = append(ps, el.Value)
	}
	return ps
}

// Len returns the amount of hosted players.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.players.Len()
}

func (h *Host) connected(id uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.players.Get(id)
	return ok
}

// takeJoined returns the players added since the last call that are still hosted.
func (h *Host) takeJoined() []*Participant {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined := make([]*Participant, 0, len(h.joined))
	for _, p := range h.joined {
		if _, ok := h.players.Get(p.id); ok {
			joined = append(joined, p)
		}
	}
	h.joined = h.joined[:0]
	return joined
}

// takeQuit returns the ids of the players removed since the last call.
func (h *Host) takeQuit() []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	quit := h.quit
	h.quit = nil
	return quit
}

func (h *Host) bind(tx *world.Tx) {
	h.tx.Store(tx)
}

type quitHandler struct {
	player.NopHandler
	h *Host
}

func (q *quitHandler) HandleQuit(p *player.Player) {
	q.h.Remove(p.UUID())
}
