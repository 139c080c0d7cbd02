package sim

import (
	"time"

	"github.com/pixil98/go-gamesim/internal/geo"
)

// MovementKind selects the speed an entity travels at.
type MovementKind string

const (
	MovementWalk MovementKind = "walk"
	MovementRun  MovementKind = "run"
)

const (
	WalkSpeed = 2.0 // units per second
	RunSpeed  = 5.0 // units per second
)

// Speed returns the movement speed for the kind in units per second.
func (k MovementKind) Speed() float64 {
	if k == MovementRun {
		return RunSpeed
	}
	return WalkSpeed
}

// Transition reports the state changes produced by a single Advance call.
// Only transitions are reported; partial movement progress is not.
type Transition struct {
	Arrived bool
	WokeUp  bool
}

// EntityState is the live movement and sleep state of one entity. Movement
// and sleep are independent axes: an entity can be moving and asleep at the
// same time. All time-driven mutation happens in Advance; everything else is
// command-driven.
//
// EntityState is not safe for concurrent use. The owning State serializes
// access.
type EntityState struct {
	id   string
	name string

	location geo.Location
	target   *geo.Location
	moving   bool
	kind     MovementKind
	speed    float64

	sleeping bool
	wakeTime *time.Time

	lastUpdate time.Time
}

// NewEntityState creates an idle, awake entity at the given location.
func NewEntityState(id, name string, location geo.Location, now time.Time) *EntityState {
	return &EntityState{
		id:         id,
		name:       name,
		location:   location,
		lastUpdate: now,
	}
}

func (e *EntityState) Id() string             { return e.id }
func (e *EntityState) Name() string           { return e.name }
func (e *EntityState) Location() geo.Location { return e.location }
func (e *EntityState) Moving() bool           { return e.moving }
func (e *EntityState) Kind() MovementKind     { return e.kind }
func (e *EntityState) Sleeping() bool         { return e.sleeping }

// Target returns a copy of the movement target, or nil when idle.
func (e *EntityState) Target() *geo.Location {
	if e.target == nil {
		return nil
	}
	t := *e.target
	return &t
}

// SetMovementTarget starts the entity moving toward target at the speed fixed
// by kind. Any in-flight movement is replaced; there is no queueing.
func (e *EntityState) SetMovementTarget(target geo.Location, kind MovementKind) {
	t := target
	e.target = &t
	e.moving = true
	e.kind = kind
	e.speed = kind.Speed()
}

// Teleport places the entity at location immediately and cancels any
// in-flight movement.
func (e *EntityState) Teleport(location geo.Location) {
	e.location = location
	e.clearMovement()
}

// Sleep puts the entity to sleep. A nil duration sleeps indefinitely until an
// explicit Wake. Calling Sleep while already asleep resets the timer.
func (e *EntityState) Sleep(now time.Time, duration *time.Duration) {
	e.sleeping = true
	if duration != nil {
		wake := now.Add(*duration)
		e.wakeTime = &wake
	} else {
		e.wakeTime = nil
	}
}

// Wake wakes the entity. Idempotent.
func (e *EntityState) Wake() {
	e.sleeping = false
	e.wakeTime = nil
}

// Advance moves the entity's state forward to now. It is the only place that
// mutates position or sleep as a function of elapsed time.
//
// A zero or negative delta (clock went backward) leaves position untouched
// for that tick. lastUpdate always advances to now regardless of branch.
func (e *EntityState) Advance(now time.Time) Transition {
	var tr Transition

	dt := now.Sub(e.lastUpdate).Seconds()
	e.lastUpdate = now

	if e.moving && e.target != nil && dt > 0 {
		loc, arrived := e.location.StepToward(*e.target, e.speed*dt)
		e.location = loc
		if arrived {
			e.clearMovement()
			tr.Arrived = true
		}
	}

	if e.sleeping && e.wakeTime != nil && !now.Before(*e.wakeTime) {
		e.Wake()
		tr.WokeUp = true
	}

	return tr
}

// DistanceToTarget returns the Euclidean distance to the movement target.
// The second return is false when the entity is not moving.
func (e *EntityState) DistanceToTarget() (float64, bool) {
	if e.target == nil {
		return 0, false
	}
	return e.location.Distance(*e.target), true
}

// SleepTimeRemaining returns the time until the entity wakes, floored at
// zero. The second return is false when the entity is awake or sleeping
// without a deadline.
func (e *EntityState) SleepTimeRemaining(now time.Time) (time.Duration, bool) {
	if !e.sleeping || e.wakeTime == nil {
		return 0, false
	}
	remaining := e.wakeTime.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func (e *EntityState) clearMovement() {
	e.target = nil
	e.moving = false
	e.kind = ""
	e.speed = 0
}
