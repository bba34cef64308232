package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smukkama/factory-monitor/internal/clock"
	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/protocol"
	"github.com/smukkama/factory-monitor/internal/scheduler"
)

var testNow = time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

type mockMachines struct {
	latest *database.SensorReading
}

func (m *mockMachines) MachineByID(id string) *database.Machine {
	if id != "machine-001" {
		return nil
	}
	return &database.Machine{ID: id, Name: "SMT Placer A1"}
}

func (m *mockMachines) LatestSensor(machineID string) *database.SensorReading {
	return m.latest
}

// manualScheduler fires callbacks only when the test asks it to
type manualScheduler struct {
	mu        sync.Mutex
	callbacks map[string]func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{callbacks: make(map[string]func())}
}

func (s *manualScheduler) Every(id string, interval time.Duration, callback func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks[id] = callback
	return nil
}

func (s *manualScheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.callbacks[id]
	delete(s.callbacks, id)
	return ok
}

func (s *manualScheduler) fireAll() {
	s.mu.Lock()
	var fns []func()
	for _, fn := range s.callbacks {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *manualScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}

type recordingSink struct {
	mu   sync.Mutex
	msgs []*protocol.ReadingMessage
	err  error
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Deliver(ctx context.Context, msg *protocol.ReadingMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestHub_UnknownMachine(t *testing.T) {
	hub := NewHub(&mockMachines{}, newManualScheduler(), NewGenerator(1, clock.Fixed{At: testNow}), time.Second)

	_, err := hub.Subscribe(context.Background(), "machine-999")
	if err != ErrUnknownMachine {
		t.Errorf("Expected ErrUnknownMachine, got %v", err)
	}
}

func TestHub_SeedsWithLatestReading(t *testing.T) {
	latest := &database.SensorReading{ID: "stored", MachineID: "machine-001", Temperature: 61, RecordedAt: testNow}
	hub := NewHub(&mockMachines{latest: latest}, newManualScheduler(), NewGenerator(1, clock.Fixed{At: testNow}), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := hub.Subscribe(ctx, "machine-001")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	select {
	case msg := <-ch:
		if msg.Reading.ID != "stored" || msg.MachineName != "SMT Placer A1" {
			t.Errorf("Unexpected first message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected the stored reading immediately")
	}
}

func TestHub_NewestReadingOverwritesUnread(t *testing.T) {
	sched := newManualScheduler()
	sink := &recordingSink{}
	hub := NewHub(&mockMachines{}, sched, NewGenerator(1, clock.Fixed{At: testNow}), time.Second, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := hub.Subscribe(ctx, "machine-001")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	sched.fireAll()
	sched.fireAll()
	sched.fireAll()

	sink.mu.Lock()
	delivered := len(sink.msgs)
	last := sink.msgs[len(sink.msgs)-1]
	sink.mu.Unlock()

	if delivered != 3 {
		t.Errorf("Expected 3 sink deliveries, got %d", delivered)
	}

	msg := <-ch
	if msg.Reading.ID != last.Reading.ID {
		t.Errorf("Expected newest reading %s, got %s", last.Reading.ID, msg.Reading.ID)
	}

	select {
	case extra := <-ch:
		t.Errorf("Expected a single buffered reading, got another: %+v", extra)
	default:
	}
}

func TestHub_SinkErrorDoesNotReachSubscriber(t *testing.T) {
	sched := newManualScheduler()
	sink := &recordingSink{err: errors.New("unavailable")}
	hub := NewHub(&mockMachines{}, sched, NewGenerator(1, clock.Fixed{At: testNow}), time.Second, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, _ := hub.Subscribe(ctx, "machine-001")
	sched.fireAll()

	select {
	case msg := <-ch:
		if msg == nil {
			t.Error("Expected a reading despite sink failure")
		}
	case <-time.After(time.Second):
		t.Fatal("Reading not delivered")
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	sched := newManualScheduler()
	hub := NewHub(&mockMachines{}, sched, NewGenerator(1, clock.Fixed{At: testNow}), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := hub.Subscribe(ctx, "machine-001")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if hub.Count() != 1 {
		t.Errorf("Expected 1 subscription, got %d", hub.Count())
	}

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// drain a reading that raced the cancel, then expect close
			if _, ok := <-ch; ok {
				t.Error("Expected channel to be closed")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after cancel")
	}

	if sched.count() != 0 {
		t.Errorf("Expected scheduler task to be cancelled, %d remain", sched.count())
	}
	if hub.Count() != 0 {
		t.Errorf("Expected 0 subscriptions, got %d", hub.Count())
	}

	// a late tick must not panic on the closed channel
	hub.tick(&subscription{id: "late", machineID: "machine-001", ch: make(chan *protocol.ReadingMessage, 1), closed: true})
}

func TestHub_WithRealScheduler(t *testing.T) {
	sched := scheduler.New(2)
	sched.Start()
	defer sched.Stop()

	hub := NewHub(&mockMachines{}, sched, NewGenerator(7, clock.System{}), 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	ch, err := hub.Subscribe(ctx, "machine-001")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	received := 0
	for range ch {
		received++
	}

	if received == 0 {
		t.Error("Expected at least one reading before the context expired")
	}
}

func TestGenerator_Ranges(t *testing.T) {
	g := NewGenerator(42, clock.Fixed{At: testNow})

	for i := 0; i < 500; i++ {
		r := g.Next("machine-001")
		if r.Temperature < 35 || r.Temperature > 65 {
			t.Fatalf("Temperature out of range: %v", r.Temperature)
		}
		if r.Humidity < 42 || r.Humidity > 54 {
			t.Fatalf("Humidity out of range: %v", r.Humidity)
		}
		if r.Pressure < 1009 || r.Pressure > 1017 {
			t.Fatalf("Pressure out of range: %v", r.Pressure)
		}
		if r.Vibration < 0.45 || r.Vibration > 1.95 {
			t.Fatalf("Vibration out of range: %v", r.Vibration)
		}
		if r.PowerConsumption < 15 || r.PowerConsumption > 25 {
			t.Fatalf("Power out of range: %v", r.PowerConsumption)
		}
		if r.Status != database.SensorStatusNormal && r.Status != database.SensorStatusWarning {
			t.Fatalf("Unexpected status %q", r.Status)
		}
		if !r.RecordedAt.Equal(testNow) {
			t.Fatalf("Expected clock time, got %s", r.RecordedAt)
		}
	}
}
