package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRunAfter(t *testing.T) {
	s := New(quietLogger())
	ran := 0
	s.RunAfter(func() { ran++ }, 2)

	s.Tick()
	if ran != 0 {
		t.Fatalf("expected task to wait two ticks, ran after one")
	}
	s.Tick()
	if ran != 1 {
		t.Fatalf("expected task to run on the second tick, ran %d times", ran)
	}
	s.Tick()
	if ran != 1 {
		t.Fatalf("expected one-shot task to run once, ran %d times", ran)
	}
	if s.Pending() != 0 {
		t.Fatalf("expected no pending tasks, got %d", s.Pending())
	}
}

func TestRunAfterNeverSameTick(t *testing.T) {
	s := New(quietLogger())
	var order []string
	s.RunEvery(func() {
		order = append(order, "every")
		if len(order) == 1 {
			s.RunAfter(func() { order = append(order, "after") }, 0)
		}
	}, 1)

	s.Tick()
	if len(order) != 1 {
		t.Fatalf("expected deferred task to not run on the scheduling tick, got %v", order)
	}
	s.Tick()
	if len(order) != 3 || order[1] != "every" || order[2] != "after" {
		t.Fatalf("expected repeating task to run before the deferred one, got %v", order)
	}
}

func TestRunEveryAndCancel(t *testing.T) {
	s := New(quietLogger())
	ran := 0
	h := s.RunEvery(func() { ran++ }, 3)
	for i := 0; i < 9; i++ {
		s.Tick()
	}
	if ran != 3 {
		t.Fatalf("expected three runs in nine ticks, got %d", ran)
	}

	s.Cancel(h)
	for i := 0; i < 9; i++ {
		s.Tick()
	}
	if ran != 3 {
		t.Fatalf("expected cancelled task to stop running, got %d runs", ran)
	}
	s.Cancel(h)
	s.Cancel(0)
}

func TestCancelDuringTick(t *testing.T) {
	s := New(quietLogger())
	ran := false
	var second Handle
	s.RunAfter(func() { s.Cancel(second) }, 1)
	second = s.RunAfter(func() { ran = true }, 1)

	s.Tick()
	if ran {
		t.Fatal("expected task cancelled earlier in the same tick to not run")
	}
}

func TestPanicIsolated(t *testing.T) {
	s := New(quietLogger())
	ran := false
	s.RunAfter(func() { panic("boom") }, 1)
	s.RunAfter(func() { ran = true }, 1)

	s.Tick()
	if !ran {
		t.Fatal("expected task after a panicking task to still run")
	}
	if s.CurrentTick() != 1 {
		t.Fatalf("expected tick 1, got %d", s.CurrentTick())
	}
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

func TestPanicReportDoesNotStallTick(t *testing.T) {
	transport := &slowTransport{events: make(chan *sentry.Event, 1)}
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: "https://key@sentry.example/1", Transport: transport})
	if err != nil {
		t.Fatalf("unable to create sentry client: %v", err)
	}
	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(client)
	defer hub.BindClient(prev)

	s := New(quietLogger())
	s.RunAfter(func() { panic("boom") }, 1)

	start := time.Now()
	s.Tick()
	if d := time.Since(start); d > time.Second {
		t.Fatalf("expected a panicking task to be reported without waiting for a flush, tick took %v", d)
	}
	select {
	case <-transport.events:
	case <-time.After(time.Second):
		t.Fatal("expected the panic to be reported to sentry")
	}
}
