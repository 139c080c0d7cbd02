package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-gamesim/internal/geo"
	"github.com/pixil98/go-gamesim/internal/sim"
	"github.com/pixil98/go-gamesim/internal/world"
	"github.com/pixil98/go-testutil"
)

var testStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestHandler() (*Handler, *sim.State) {
	state := sim.NewState(world.DefaultArea(), testStart)
	h := NewHandler(state)
	h.now = func() time.Time { return testStart }
	return h, state
}

func loc(x, y, z float64) *geo.Location {
	return &geo.Location{X: x, Y: y, Z: z}
}

func seconds(s float64) *float64 { return &s }

func TestHandleMovement(t *testing.T) {
	tests := map[string]struct {
		cmd     *Command
		expKind sim.MovementKind
	}{
		"walk": {
			cmd:     &Command{Command: "walk", EntityId: "person_001", Destination: loc(10, 0, 0)},
			expKind: sim.MovementWalk,
		},
		"run": {
			cmd:     &Command{Command: "run", EntityId: "person_001", Destination: loc(10, 0, 0)},
			expKind: sim.MovementRun,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, state := newTestHandler()

			err := h.Handle(context.Background(), tt.cmd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_ = state.WithEntity("person_001", func(e *sim.EntityState) error {
				testutil.AssertEqual(t, "moving", e.Moving(), true)
				testutil.AssertEqual(t, "kind", e.Kind(), tt.expKind)
				testutil.AssertEqual(t, "target", *e.Target(), geo.Location{X: 10})
				return nil
			})
		})
	}
}

func TestHandleMovementOverwritesInFlight(t *testing.T) {
	h, state := newTestHandler()

	_ = h.Handle(context.Background(), &Command{Command: "walk", EntityId: "person_001", Destination: loc(10, 0, 0)})
	_ = h.Handle(context.Background(), &Command{Command: "run", EntityId: "person_001", Destination: loc(0, 0, 5)})

	_ = state.WithEntity("person_001", func(e *sim.EntityState) error {
		testutil.AssertEqual(t, "kind", e.Kind(), sim.MovementRun)
		testutil.AssertEqual(t, "target", *e.Target(), geo.Location{Z: 5})
		return nil
	})
}

func TestHandleTeleport(t *testing.T) {
	tests := map[string]struct {
		cmd    *Command
		expLoc geo.Location
	}{
		"via target": {
			cmd:    &Command{Command: "teleport", EntityId: "person_001", Target: loc(1, 2, 3)},
			expLoc: geo.Location{X: 1, Y: 2, Z: 3},
		},
		"via destination": {
			cmd:    &Command{Command: "teleport", EntityId: "person_001", Destination: loc(4, 5, 6)},
			expLoc: geo.Location{X: 4, Y: 5, Z: 6},
		},
		"target wins over destination": {
			cmd:    &Command{Command: "teleport", EntityId: "person_001", Target: loc(1, 1, 1), Destination: loc(9, 9, 9)},
			expLoc: geo.Location{X: 1, Y: 1, Z: 1},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, state := newTestHandler()

			// Teleport must cancel an in-flight walk.
			_ = h.Handle(context.Background(), &Command{Command: "walk", EntityId: "person_001", Destination: loc(500, 0, 0)})

			err := h.Handle(context.Background(), tt.cmd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_ = state.WithEntity("person_001", func(e *sim.EntityState) error {
				testutil.AssertEqual(t, "location", e.Location(), tt.expLoc)
				testutil.AssertEqual(t, "moving", e.Moving(), false)
				return nil
			})
		})
	}
}

func TestHandleSleepAndWake(t *testing.T) {
	h, state := newTestHandler()

	err := h.Handle(context.Background(), &Command{Command: "sleep", EntityId: "person_001", Duration: seconds(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = state.WithEntity("person_001", func(e *sim.EntityState) error {
		testutil.AssertEqual(t, "sleeping", e.Sleeping(), true)
		r, ok := e.SleepTimeRemaining(testStart)
		testutil.AssertEqual(t, "has deadline", ok, true)
		testutil.AssertEqual(t, "remaining", r, 10*time.Second)
		return nil
	})

	err = h.Handle(context.Background(), &Command{Command: "wake", EntityId: "person_001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = state.WithEntity("person_001", func(e *sim.EntityState) error {
		testutil.AssertEqual(t, "sleeping after wake", e.Sleeping(), false)
		return nil
	})
}

func TestHandleSleepIndefinite(t *testing.T) {
	tests := map[string]*Command{
		"no duration":       {Command: "sleep", EntityId: "person_001"},
		"zero duration":     {Command: "sleep", EntityId: "person_001", Duration: seconds(0)},
		"negative duration": {Command: "sleep", EntityId: "person_001", Duration: seconds(-5)},
	}

	for name, cmd := range tests {
		t.Run(name, func(t *testing.T) {
			h, state := newTestHandler()

			err := h.Handle(context.Background(), cmd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_ = state.WithEntity("person_001", func(e *sim.EntityState) error {
				testutil.AssertEqual(t, "sleeping", e.Sleeping(), true)
				_, ok := e.SleepTimeRemaining(testStart)
				testutil.AssertEqual(t, "has deadline", ok, false)
				return nil
			})
		})
	}
}

func TestHandleValidationErrors(t *testing.T) {
	tests := map[string]struct {
		cmd    *Command
		expMsg string
	}{
		"missing command":           {&Command{EntityId: "person_001"}, "command is required"},
		"missing entity id":         {&Command{Command: "walk"}, "entity_id is required"},
		"walk without destination":  {&Command{Command: "walk", EntityId: "person_001"}, "walk command requires destination"},
		"run without destination":   {&Command{Command: "run", EntityId: "person_001"}, "run command requires destination"},
		"teleport without location": {&Command{Command: "teleport", EntityId: "person_001"}, "teleport command requires target location"},
		"unknown command":           {&Command{Command: "fly", EntityId: "person_001", Destination: loc(1, 0, 0)}, "unknown command: fly"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, state := newTestHandler()

			before, _ := state.EntityView("person_001", testStart)

			err := h.Handle(context.Background(), tt.cmd)

			var userErr *UserError
			if !errors.As(err, &userErr) {
				t.Fatalf("expected *UserError, got %v", err)
			}
			testutil.AssertEqual(t, "message", userErr.Message, tt.expMsg)

			// A rejected command must leave entity state untouched.
			after, _ := state.EntityView("person_001", testStart)
			testutil.AssertEqual(t, "location", after.Location, before.Location)
			testutil.AssertEqual(t, "moving", after.Moving, before.Moving)
			testutil.AssertEqual(t, "sleeping", after.Sleeping, before.Sleeping)
		})
	}
}

func TestHandleUnknownEntity(t *testing.T) {
	h, _ := newTestHandler()

	err := h.Handle(context.Background(), &Command{Command: "wake", EntityId: "person_999"})

	if !errors.Is(err, sim.ErrEntityNotFound) {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestHandleRecordsCommand(t *testing.T) {
	h, state := newTestHandler()

	_ = h.Handle(context.Background(), &Command{Command: "wake", EntityId: "person_001"})

	snap := state.Snapshot(testStart)
	if snap.LastCommand == nil {
		t.Fatal("expected last command to be recorded")
	}
	testutil.AssertEqual(t, "record", snap.LastCommand.Text, "wake person_001")
}
