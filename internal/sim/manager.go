package sim

import (
	"context"
	"time"

	"github.com/pixil98/go-log"
)

// Manager advances every entity each tick and publishes transition events.
// It implements driver.Ticker.
type Manager struct {
	state *State
	pub   EventPublisher

	// ready gates ticking until world-init has reached the backend. A nil
	// channel means no gate.
	ready <-chan struct{}

	now func() time.Time
}

type ManagerOpt func(*Manager)

// WithReadyGate holds ticking until the channel is closed.
func WithReadyGate(ready <-chan struct{}) ManagerOpt {
	return func(m *Manager) {
		m.ready = ready
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) ManagerOpt {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(state *State, pub EventPublisher, opts ...ManagerOpt) *Manager {
	m := &Manager{
		state: state,
		pub:   pub,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Tick advances all entities to the current time. Entities are independent;
// a failure in one is logged and the rest still advance.
func (m *Manager) Tick(ctx context.Context) error {
	if m.ready != nil {
		select {
		case <-m.ready:
		default:
			// World-init hasn't reached the backend yet.
			return nil
		}
	}

	now := m.now()
	for _, id := range m.state.EntityIds() {
		m.tickEntity(ctx, id, now)
	}

	return nil
}

func (m *Manager) tickEntity(ctx context.Context, id string, now time.Time) {
	logger := log.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("advancing entity %s: %v", id, r)
		}
	}()

	var events []*Event
	err := m.state.WithEntity(id, func(e *EntityState) error {
		tr := e.Advance(now)

		if tr.Arrived {
			ev, err := NewArrivalEvent(id, e.Location())
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		if tr.WokeUp {
			ev, err := NewWokeUpEvent(id, now)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}

		return nil
	})
	if err != nil {
		logger.Errorf("advancing entity %s: %s", id, err)
		return
	}

	// Publish outside the state lock; the payloads are already copies.
	for _, ev := range events {
		if err := m.pub.PublishEvent(ev); err != nil {
			logger.Warnf("publishing %s event for entity %s: %s", ev.Endpoint, id, err)
		}
	}
}
