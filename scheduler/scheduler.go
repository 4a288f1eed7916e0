package scheduler

import (
	"fmt"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/phaser/oerror"
	"github.com/sirupsen/logrus"
)

// Handle identifies a task registered with a Scheduler. The zero Handle never refers to a task.
type Handle uint64

// Scheduler runs callbacks on simulation ticks. It does not keep time on its own: the host calls Tick
// once for every tick of its simulation, and every callback runs on the goroutine calling Tick.
// Callbacks that are due on the same tick run in the order they were registered. A Scheduler is safe
// for concurrent use.
type Scheduler struct {
	log *logrus.Logger

	mu      sync.Mutex
	current uint64
	next    Handle
	tasks   []*task
}

type task struct {
	handle   Handle
	f        func()
	due      uint64
	interval uint64
	repeat   bool
	done     bool
}

// New returns a new Scheduler. Panics raised by callbacks are logged to log and reported to sentry.
func New(log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{log: log}
}

// RunEvery runs f every interval ticks, starting interval ticks from now. An interval below one is
// treated as one.
func (s *Scheduler) RunEvery(f func(), interval int) Handle {
	return s.add(f, interval, true)
}

// RunAfter runs f once, delay ticks from now. A delay below one is treated as one, so f never runs
// during the tick that scheduled it.
func (s *Scheduler) RunAfter(f func(), delay int) Handle {
	return s.add(f, delay, false)
}

// Cancel stops the task with the handle passed from running again. Cancelling a task that already ran
// or was already cancelled is a no-op.
func (s *Scheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.handle == h {
			t.done = true
		}
	}
}

// CurrentTick returns the amount of ticks processed by the Scheduler.
func (s *Scheduler) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pending returns the amount of tasks that are still scheduled to run.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.done {
			n++
		}
	}
	return n
}

// Tick advances the Scheduler by one tick and runs every callback that is due.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	s.current++
	now := s.current

	due := make([]*task, 0, len(s.tasks))
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if t.done {
			continue
		}
		live = append(live, t)
		if t.due <= now {
			due = append(due, t)
		}
	}
	clear(s.tasks[len(live):])
	s.tasks = live
	s.mu.Unlock()

	for _, t := range due {
		s.mu.Lock()
		if t.done {
			s.mu.Unlock()
			continue
		}
		if t.repeat {
			t.due = now + t.interval
		} else {
			t.done = true
		}
		s.mu.Unlock()

		s.run(t)
	}
}

func (s *Scheduler) add(f func(), ticks int, repeat bool) Handle {
	if ticks < 1 {
		ticks = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.tasks = append(s.tasks, &task{
		handle:   s.next,
		f:        f,
		due:      s.current + uint64(ticks),
		interval: uint64(ticks),
		repeat:   repeat,
	})
	return s.next
}

func (s *Scheduler) run(t *task) {
	defer func() {
		if err := recover(); err != nil {
			s.log.Errorf("scheduler: task %d panicked: %v", t.handle, err)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("task", fmt.Sprint(t.handle))
			})
			hub.Recover(oerror.New("scheduled task crashed: %v", err))
		}
	}()
	t.f()
}
