package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/pixil98/go-gamesim/internal/geo"
	"github.com/pixil98/go-testutil"
)

type recordingPublisher struct {
	events []*Event
	err    error
}

func (p *recordingPublisher) PublishEvent(ev *Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestManagerEmitsSingleArrivalEvent(t *testing.T) {
	s := newTestState()
	pub := &recordingPublisher{}
	clock := &fakeClock{now: testStart}
	m := NewManager(s, pub, WithClock(func() time.Time { return clock.now }))

	_ = s.WithEntity("person_001", func(e *EntityState) error {
		e.Teleport(geo.Location{})
		e.SetMovementTarget(geo.Location{X: 10}, MovementWalk)
		return nil
	})

	// 10 units at walk speed take 5 seconds: 12 half-second ticks are plenty.
	for i := 0; i < 12; i++ {
		clock.advance(500 * time.Millisecond)
		if err := m.Tick(context.Background()); err != nil {
			t.Fatalf("unexpected tick error: %v", err)
		}
	}

	testutil.AssertEqual(t, "event count", len(pub.events), 1)
	ev := pub.events[0]
	testutil.AssertEqual(t, "endpoint", ev.Endpoint, EndpointCommand)
	if ev.Id == "" {
		t.Error("expected event id to be set")
	}

	var payload struct {
		Command     string       `json:"command"`
		EntityId    string       `json:"entity_id"`
		Destination geo.Location `json:"destination"`
	}
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("unmarshalling payload: %v", err)
	}
	testutil.AssertEqual(t, "command", payload.Command, "move_to")
	testutil.AssertEqual(t, "entity id", payload.EntityId, "person_001")
	testutil.AssertEqual(t, "destination", payload.Destination, geo.Location{X: 10})
}

func TestManagerEmitsWokeUpEvent(t *testing.T) {
	s := newTestState()
	pub := &recordingPublisher{}
	clock := &fakeClock{now: testStart}
	m := NewManager(s, pub, WithClock(func() time.Time { return clock.now }))

	d := 3 * time.Second
	_ = s.WithEntity("person_002", func(e *EntityState) error {
		e.Sleep(clock.now, &d)
		return nil
	})

	clock.advance(4 * time.Second)
	if err := m.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}

	testutil.AssertEqual(t, "event count", len(pub.events), 1)
	ev := pub.events[0]
	testutil.AssertEqual(t, "endpoint", ev.Endpoint, EndpointEvent)

	var payload struct {
		Event     string `json:"event"`
		EntityId  string `json:"entity_id"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("unmarshalling payload: %v", err)
	}
	testutil.AssertEqual(t, "event", payload.Event, "woke_up")
	testutil.AssertEqual(t, "entity id", payload.EntityId, "person_002")
	testutil.AssertEqual(t, "timestamp", payload.Timestamp, clock.now.Format(time.RFC3339))
}

func TestManagerPartialProgressEmitsNothing(t *testing.T) {
	s := newTestState()
	pub := &recordingPublisher{}
	clock := &fakeClock{now: testStart}
	m := NewManager(s, pub, WithClock(func() time.Time { return clock.now }))

	_ = s.WithEntity("person_001", func(e *EntityState) error {
		e.Teleport(geo.Location{})
		e.SetMovementTarget(geo.Location{X: 1000}, MovementWalk)
		return nil
	})

	for i := 0; i < 5; i++ {
		clock.advance(500 * time.Millisecond)
		_ = m.Tick(context.Background())
	}

	testutil.AssertEqual(t, "event count", len(pub.events), 0)
}

func TestManagerSurvivesPublishFailure(t *testing.T) {
	s := newTestState()
	pub := &recordingPublisher{err: fmt.Errorf("bus down")}
	clock := &fakeClock{now: testStart}
	m := NewManager(s, pub, WithClock(func() time.Time { return clock.now }))

	_ = s.WithEntity("person_001", func(e *EntityState) error {
		e.Teleport(geo.Location{})
		e.SetMovementTarget(geo.Location{X: 1}, MovementRun)
		return nil
	})

	clock.advance(time.Second)
	if err := m.Tick(context.Background()); err != nil {
		t.Fatalf("publish failure must not fail the tick: %v", err)
	}

	// The arrival itself still happened despite the failed publish.
	_ = s.WithEntity("person_001", func(e *EntityState) error {
		testutil.AssertEqual(t, "moving", e.Moving(), false)
		testutil.AssertEqual(t, "x", e.Location().X, 1.0)
		return nil
	})
}

func TestManagerReadyGate(t *testing.T) {
	s := newTestState()
	pub := &recordingPublisher{}
	clock := &fakeClock{now: testStart}
	ready := make(chan struct{})
	m := NewManager(s, pub,
		WithClock(func() time.Time { return clock.now }),
		WithReadyGate(ready),
	)

	_ = s.WithEntity("person_001", func(e *EntityState) error {
		e.Teleport(geo.Location{})
		e.SetMovementTarget(geo.Location{X: 1}, MovementRun)
		return nil
	})

	// Gate closed: ticks are no-ops and time does not consume movement.
	clock.advance(time.Minute)
	_ = m.Tick(context.Background())
	_ = s.WithEntity("person_001", func(e *EntityState) error {
		testutil.AssertEqual(t, "x before ready", e.Location().X, 0.0)
		return nil
	})

	close(ready)
	clock.advance(time.Second)
	_ = m.Tick(context.Background())

	testutil.AssertEqual(t, "event count", len(pub.events), 1)
}
