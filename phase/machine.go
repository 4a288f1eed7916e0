package phase

import (
	"fmt"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/oomph-ac/phaser/oerror"
	"github.com/oomph-ac/phaser/scheduler"
	"github.com/oomph-ac/phaser/worker"
	"github.com/sirupsen/logrus"
)

// Machine tracks the speed of every participant of a Host and moves fast participants in and out of
// phasing. A Machine is safe for concurrent use, but expects its scheduler callbacks to be the only
// place the host world is mutated from.
type Machine struct {
	host  Host
	sched Scheduler

	log       *logrus.Logger
	baseLevel logrus.Level

	handler  Handler
	effects  EndEffects
	feedback FeedbackFactory
	dispatch worker.Dispatcher

	mu        sync.Mutex
	conf      Config
	store     *Store
	feedbacks map[uuid.UUID]Feedback
	intents   uint64
	stats     Stats

	running            bool
	monitorH, recheckH scheduler.Handle
}

// Option configures a Machine created using New.
type Option func(m *Machine)

// WithConfig sets the Config of the Machine. An invalid Config is replaced by DefaultConfig.
func WithConfig(conf Config) Option {
	return func(m *Machine) {
		m.conf = conf
	}
}

// WithLogger sets the logger used by the Machine.
func WithLogger(log *logrus.Logger) Option {
	return func(m *Machine) {
		m.log = log
	}
}

// WithHandler sets the Handler of the Machine.
func WithHandler(h Handler) Option {
	return func(m *Machine) {
		m.handler = h
	}
}

// WithEndEffects sets the collaborator notified when a participant stops phasing.
func WithEndEffects(e EndEffects) Option {
	return func(m *Machine) {
		m.effects = e
	}
}

// WithFeedback sets the factory used to create a Feedback for every tracked participant.
func WithFeedback(f FeedbackFactory) Option {
	return func(m *Machine) {
		m.feedback = f
	}
}

// WithDispatcher sets the Dispatcher EndEffects are notified through. By default, they are notified on
// the goroutine completing the exit.
func WithDispatcher(d worker.Dispatcher) Option {
	return func(m *Machine) {
		m.dispatch = d
	}
}

// New creates a Machine monitoring the participants of host, scheduling its work on sched. The Machine
// does nothing until Start is called.
func New(host Host, sched Scheduler, opts ...Option) *Machine {
	m := &Machine{
		host:      host,
		sched:     sched,
		conf:      DefaultConfig(),
		handler:   NopHandler{},
		effects:   NopEffects{},
		dispatch:  worker.Inline{},
		store:     NewStore(),
		feedbacks: make(map[uuid.UUID]Feedback),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logrus.StandardLogger()
	}
	m.baseLevel = m.log.GetLevel()
	if err := m.conf.Validate(); err != nil {
		m.log.Warnf("phase: invalid config (%v), using defaults", err)
		m.conf = DefaultConfig()
	}
	m.applyLogLevel()
	return m
}

// Start registers the sampling and re-check tasks of the Machine with its scheduler.
func (m *Machine) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.schedule()
	m.log.Infof("phase: monitoring started (entry %.1f, exit %.1f, debounce %d)", m.conf.EntrySpeed, m.conf.ExitSpeed, m.conf.DebounceTicks)
}

// Close stops the Machine. Participants that are phasing, or about to, are put back in their prior mode
// right away, without notifying EndEffects. Every Feedback is closed.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.sched.Cancel(m.recheckH)
		m.sched.Cancel(m.monitorH)
		m.running = false
	}

	for _, id := range m.store.IDs() {
		p, _ := m.store.Participant(id)
		rec, _ := m.store.Get(id)
		if rec.State != StateNormal {
			m.isolate(p, func() { m.restore(p, rec) })
		}
		m.store.Delete(id)
	}
	for id, fb := range m.feedbacks {
		fb.Close()
		delete(m.feedbacks, id)
	}
}

// Join starts tracking p. Participants are also tracked on their first sample, so calling Join is only
// needed for a participant to get its Feedback right away.
func (m *Machine) Join(p Participant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isolate(p, func() { m.track(p) })
}

// Quit stops tracking the participant with the id passed. Its mode is left as is, and no effects fire.
func (m *Machine) Quit(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forget(id)
}

// Config returns the current Config of the Machine.
func (m *Machine) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conf
}

// UpdateConfig replaces the Config of the Machine. New thresholds are pushed to every live Feedback
// immediately, and the sampling and re-check tasks are rescheduled if their interval changed. If conf is
// invalid, an error is returned and the current Config is kept.
func (m *Machine) UpdateConfig(conf Config) error {
	if err := conf.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.conf
	m.conf = conf
	m.applyLogLevel()

	for _, fb := range m.feedbacks {
		fb.SetThresholds(conf.EntrySpeed, conf.ExitSpeed)
	}
	if m.running && (old.SampleInterval != conf.SampleInterval || old.RecheckInterval != conf.RecheckInterval) {
		m.sched.Cancel(m.recheckH)
		m.sched.Cancel(m.monitorH)
		m.schedule()
	}
	m.log.Debugf("phase: config updated: %+v", conf)
	return nil
}

// Record returns a copy of the record of the participant with the id passed.
func (m *Machine) Record(id uuid.UUID) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store.Get(id)
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Records returns copies of the records of all tracked participants, in the order they started being
// tracked.
func (m *Machine) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Snapshot()
}

// Tracked returns the amount of participants currently tracked.
func (m *Machine) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Len()
}

// Stats returns the counters of the Machine.
func (m *Machine) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// schedule registers the re-check task before the monitor task, so that on a tick both run, the re-check
// runs first and a path-clear exit takes precedence over a debounce exit.
func (m *Machine) schedule() {
	m.recheckH = m.sched.RunEvery(m.recheck, m.conf.RecheckInterval)
	m.monitorH = m.sched.RunEvery(m.monitor, m.conf.SampleInterval)
}

func (m *Machine) applyLogLevel() {
	if m.conf.Debug {
		m.log.SetLevel(logrus.DebugLevel)
		return
	}
	m.log.SetLevel(m.baseLevel)
}

// monitor is the sampling tick: it sweeps stale records and samples every connected participant.
func (m *Machine) monitor() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.stats.Cycles++

	for _, p := range m.sweep(m.participants()) {
		m.isolate(p, func() { m.sample(p) })
	}
}

func (m *Machine) participants() (ps []Participant) {
	defer func() {
		if err := recover(); err != nil {
			m.log.Errorf("phase: listing participants panicked: %v", err)
			m.stats.Failures++
			ps = nil
		}
	}()
	return m.host.Participants()
}

// track creates a Normal record for p if it is not tracked yet. Participants already in the ghost mode
// were put there by something else and are left alone.
func (m *Machine) track(p Participant) (*Record, bool) {
	if rec, ok := m.store.Get(p.ID()); ok {
		m.store.Refresh(p)
		return rec, true
	}
	m.attachFeedback(p)

	mode, err := p.Mode()
	if err != nil {
		m.debugf(p, "unable to read mode, not tracking: %v", err)
		return nil, false
	}
	if mode == m.conf.GhostMode {
		return nil, false
	}
	rec := &Record{State: StateNormal}
	if pos, err := p.Position(); err == nil {
		rec.LastPosition = pos
	}
	m.store.Put(p, rec)
	return rec, true
}

// forget removes every trace of the participant with the id passed.
func (m *Machine) forget(id uuid.UUID) {
	m.store.Delete(id)
	if fb, ok := m.feedbacks[id]; ok {
		fb.Close()
		delete(m.feedbacks, id)
	}
}

func (m *Machine) attachFeedback(p Participant) {
	if m.feedback == nil {
		return
	}
	if _, ok := m.feedbacks[p.ID()]; ok {
		return
	}
	if fb := m.feedback(p, m.conf.EntrySpeed, m.conf.ExitSpeed); fb != nil {
		m.feedbacks[p.ID()] = fb
	}
}

// isolate runs f, which processes p, such that a panic in f only drops the record of p and never
// affects any other participant.
func (m *Machine) isolate(p Participant, f func()) {
	defer func() {
		if err := recover(); err != nil {
			m.stats.Failures++
			name, id := describe(p)
			m.log.WithField("participant", name).Errorf("phase: processing panicked: %v", err)
			if id != uuid.Nil {
				m.store.Delete(id)
			}

			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("participant", name)
			})
			hub.Recover(oerror.New("phase processing crashed: %v", err))
		}
	}()
	f()
}

// describe returns the name and id of p without trusting the handle to still work.
func describe(p Participant) (name string, id uuid.UUID) {
	defer func() {
		if recover() != nil {
			name = fmt.Sprintf("%v", id)
		}
	}()
	id = p.ID()
	name = p.Name()
	return name, id
}

func (m *Machine) debugf(p Participant, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	m.log.WithField("participant", p.Name()).Debug(msg)
	if m.conf.Debug {
		p.Message(msg)
	}
}

func (m *Machine) nextIntent() uint64 {
	m.intents++
	return m.intents
}
