package phase

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/event"
	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/phaser/game"
	"github.com/oomph-ac/phaser/oerror"
	"github.com/oomph-ac/phaser/scheduler"
	"github.com/sirupsen/logrus"
)

type mockParticipant struct {
	id   uuid.UUID
	name string

	valid, gone   bool
	pos, vel, dir mgl64.Vec3
	mode          Mode
	obstructed    bool

	velErr, modeErr, setModeErr, probeErr error
	panicOnVelocity                       bool

	setModes   []Mode
	velocities []mgl64.Vec3
	messages   []string
}

func newMockParticipant(name string, mode Mode) *mockParticipant {
	return &mockParticipant{
		id:    uuid.New(),
		name:  name,
		valid: true,
		dir:   mgl64.Vec3{0, 0, 1},
		mode:  mode,
	}
}

// setSpeed sets the velocity of the participant such that it moves at speed blocks per second.
func (p *mockParticipant) setSpeed(speed float64) {
	p.vel = mgl64.Vec3{0, 0, speed / game.SpeedScale}
}

func (p *mockParticipant) ID() uuid.UUID { return p.id }
func (p *mockParticipant) Name() string  { return p.name }
func (p *mockParticipant) Valid() bool   { return p.valid }

func (p *mockParticipant) Position() (mgl64.Vec3, error) {
	if p.gone {
		return mgl64.Vec3{}, oerror.ErrGone
	}
	return p.pos, nil
}

func (p *mockParticipant) Velocity() (mgl64.Vec3, error) {
	if p.panicOnVelocity {
		panic("velocity exploded")
	}
	return p.vel, p.velErr
}

func (p *mockParticipant) SetVelocity(vel mgl64.Vec3) error {
	p.velocities = append(p.velocities, vel)
	p.vel = vel
	return nil
}

func (p *mockParticipant) ViewOrigin() (mgl64.Vec3, error) {
	return p.pos.Add(mgl64.Vec3{0, game.EyeHeight}), nil
}

func (p *mockParticipant) ViewDirection() (mgl64.Vec3, error) { return p.dir, nil }

func (p *mockParticipant) ObstructionProbe(_, _ mgl64.Vec3, _ float64) (bool, error) {
	return p.obstructed, p.probeErr
}

func (p *mockParticipant) Mode() (Mode, error) { return p.mode, p.modeErr }

func (p *mockParticipant) SetMode(mode Mode) error {
	if p.setModeErr != nil {
		return p.setModeErr
	}
	p.setModes = append(p.setModes, mode)
	p.mode = mode
	return nil
}

func (p *mockParticipant) Message(msg string) { p.messages = append(p.messages, msg) }

type mockHost struct {
	participants []*mockParticipant
}

func (h *mockHost) Participants() []Participant {
	ps := make([]Participant, 0, len(h.participants))
	for _, p := range h.participants {
		ps = append(ps, p)
	}
	return ps
}

func (h *mockHost) remove(p *mockParticipant) {
	for i, other := range h.participants {
		if other == p {
			h.participants = append(h.participants[:i], h.participants[i+1:]...)
			return
		}
	}
}

// recordingScheduler keeps every deferred callback so tests can fire them a second time.
type recordingScheduler struct {
	*scheduler.Scheduler
	deferred []func()
}

func (s *recordingScheduler) RunAfter(f func(), delay int) scheduler.Handle {
	s.deferred = append(s.deferred, f)
	return s.Scheduler.RunAfter(f, delay)
}

type mockEffects struct {
	ended []Record
}

func (e *mockEffects) PhaseEnded(_ Participant, rec Record) {
	e.ended = append(e.ended, rec)
}

type mockFeedback struct {
	entry, exit float64
	closed      bool
}

func (f *mockFeedback) SetThresholds(entry, exit float64) { f.entry, f.exit = entry, exit }
func (f *mockFeedback) Close()                            { f.closed = true }

type vetoHandler struct {
	targets []Mode
}

func (h *vetoHandler) HandleEnter(ctx *event.Context[Participant], target Mode) {
	h.targets = append(h.targets, target)
	ctx.Cancel()
}

type testEnv struct {
	t         *testing.T
	m         *Machine
	sched     *recordingScheduler
	host      *mockHost
	effects   *mockEffects
	feedbacks map[uuid.UUID]*mockFeedback
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEnv(t *testing.T, conf Config, ps ...*mockParticipant) *testEnv {
	t.Helper()
	log := quietLogger()
	env := &testEnv{
		t:         t,
		sched:     &recordingScheduler{Scheduler: scheduler.New(log)},
		host:      &mockHost{participants: ps},
		effects:   &mockEffects{},
		feedbacks: make(map[uuid.UUID]*mockFeedback),
	}
	env.m = New(env.host, env.sched,
		WithConfig(conf),
		WithLogger(log),
		WithEndEffects(env.effects),
		WithFeedback(func(p Participant, entry, exit float64) Feedback {
			fb := &mockFeedback{entry: entry, exit: exit}
			env.feedbacks[p.ID()] = fb
			return fb
		}),
	)
	env.m.Start()
	return env
}

func (e *testEnv) tick(n int) {
	for i := 0; i < n; i++ {
		e.sched.Tick()
	}
}

func (e *testEnv) record(p *mockParticipant) Record {
	e.t.Helper()
	rec, ok := e.m.Record(p.id)
	if !ok {
		e.t.Fatalf("expected %s to be tracked", p.name)
	}
	return rec
}

func (e *testEnv) expectState(p *mockParticipant, state State) Record {
	e.t.Helper()
	rec := e.record(p)
	if rec.State != state {
		e.t.Fatalf("expected %s to be %s, got %s", p.name, state, rec.State)
	}
	return rec
}

func (e *testEnv) expectUntracked(p *mockParticipant) {
	e.t.Helper()
	if rec, ok := e.m.Record(p.id); ok {
		e.t.Fatalf("expected %s to not be tracked, got %s record", p.name, rec.State)
	}
}

// enterPhasing moves p from a standstill into phasing: one tick to start entering, one tick to apply.
func (e *testEnv) enterPhasing(p *mockParticipant, speed float64) {
	e.t.Helper()
	p.setSpeed(speed)
	e.tick(1)
	e.expectState(p, StateEntering)
	e.tick(1)
	e.expectState(p, StatePhasing)
}

// slowTransport is a sentry transport that takes far longer to flush than any tick may take.
type slowTransport struct {
	events chan *sentry.Event
}

func (s *slowTransport) Configure(sentry.ClientOptions) {}
func (s *slowTransport) SendEvent(e *sentry.Event)      { s.events <- e }
func (s *slowTransport) Close()                         {}

func (s *slowTransport) Flush(time.Duration) bool {
	time.Sleep(10 * time.Second)
	return true
}

func (s *slowTransport) FlushWithContext(context.Context) bool {
	time.Sleep(10 * time.Second)
	return true
}
