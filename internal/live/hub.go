package live

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/protocol"
)

var (
	readingsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_live_readings_total",
		Help: "Synthetic live readings generated, by machine.",
	}, []string{"machine_id"})

	sinkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_live_sink_failures_total",
		Help: "Failed deliveries of live readings to a sink.",
	}, []string{"sink"})

	activeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "factory_live_subscriptions",
		Help: "Open live reading subscriptions.",
	})
)

// Sink receives every generated reading. Failures are logged and never
// reach subscribers.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, msg *protocol.ReadingMessage) error
}

// Scheduler runs the per-subscription tick
type Scheduler interface {
	Every(id string, interval time.Duration, callback func()) error
	Cancel(id string) bool
}

// Machines resolves the machines a subscription may target
type Machines interface {
	MachineByID(id string) *database.Machine
	LatestSensor(machineID string) *database.SensorReading
}

// Hub owns live subscriptions. Each subscription is one recurring scheduler
// task feeding a single-slot channel.
type Hub struct {
	machines  Machines
	scheduler Scheduler
	generator *Generator
	interval  time.Duration
	sinks     []Sink
	sinkWait  time.Duration

	mu   sync.Mutex
	subs map[string]*subscription
}

type subscription struct {
	id          string
	machineID   string
	machineName string
	ch          chan *protocol.ReadingMessage
	mu          sync.Mutex
	closed      bool
}

// NewHub creates a hub that ticks every interval
func NewHub(machines Machines, scheduler Scheduler, generator *Generator, interval time.Duration, sinks ...Sink) *Hub {
	return &Hub{
		machines:  machines,
		scheduler: scheduler,
		generator: generator,
		interval:  interval,
		sinks:     sinks,
		sinkWait:  2 * time.Second,
		subs:      make(map[string]*subscription),
	}
}

// Subscribe streams readings for machineID until ctx is done, at which point
// the channel is closed. The stored latest reading, if any, is delivered
// first. A reader that falls behind only ever sees the newest reading.
func (h *Hub) Subscribe(ctx context.Context, machineID string) (<-chan *protocol.ReadingMessage, error) {
	machine := h.machines.MachineByID(machineID)
	if machine == nil {
		return nil, ErrUnknownMachine
	}

	sub := &subscription{
		id:          "live:" + machineID + ":" + uuid.New().String(),
		machineID:   machineID,
		machineName: machine.Name,
		ch:          make(chan *protocol.ReadingMessage, 1),
	}

	if latest := h.machines.LatestSensor(machineID); latest != nil {
		sub.offer(protocol.NewReadingMessage(machine.Name, *latest, latest.RecordedAt))
	}

	if err := h.scheduler.Every(sub.id, h.interval, func() { h.tick(sub) }); err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	activeSubscriptions.Inc()

	log.Debug().Str("subscription", sub.id).Str("machine_id", machineID).Msg("live subscription opened")

	go func() {
		<-ctx.Done()
		h.unsubscribe(sub)
	}()

	return sub.ch, nil
}

// Count returns the number of open subscriptions
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) unsubscribe(sub *subscription) {
	h.scheduler.Cancel(sub.id)

	h.mu.Lock()
	delete(h.subs, sub.id)
	h.mu.Unlock()

	sub.close()
	activeSubscriptions.Dec()

	log.Debug().Str("subscription", sub.id).Msg("live subscription closed")
}

func (h *Hub) tick(sub *subscription) {
	reading := h.generator.Next(sub.machineID)
	msg := protocol.NewReadingMessage(sub.machineName, reading, reading.RecordedAt)

	readingsGenerated.WithLabelValues(sub.machineID).Inc()
	sub.offer(msg)
	h.deliver(msg)
}

func (h *Hub) deliver(msg *protocol.ReadingMessage) {
	if len(h.sinks) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.sinkWait)
	defer cancel()

	for _, sink := range h.sinks {
		if err := sink.Deliver(ctx, msg); err != nil {
			sinkFailures.WithLabelValues(sink.Name()).Inc()
			log.Warn().Err(err).Str("sink", sink.Name()).Str("machine_id", msg.MachineID).Msg("failed to deliver live reading")
		}
	}
}

// offer places msg in the channel, replacing an unread older reading
func (s *subscription) offer(msg *protocol.ReadingMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- msg:
		return
	default:
	}

	select {
	case <-s.ch:
	default:
	}
	s.ch <- msg
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

var (
	ErrUnknownMachine = &LiveError{"unknown machine"}
)

// LiveError represents a live subscription error
type LiveError struct {
	msg string
}

func (e *LiveError) Error() string {
	return e.msg
}
