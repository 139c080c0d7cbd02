package sim

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pixil98/go-gamesim/internal/geo"
	"github.com/pixil98/go-gamesim/internal/world"
)

// Note is a timestamped observability record (last command received, last
// delivery error). Most recent wins; not authoritative state.
type Note struct {
	Text string
	At   time.Time
}

// State is the single source of truth for all mutable simulation state.
// Commands arrive on listener goroutines while the driver ticks on its own,
// so all access goes through these methods to keep mutation serialized.
type State struct {
	mu       sync.RWMutex
	entities map[string]*EntityState
	houses   []world.StaticObject
	stores   []world.StaticObject

	lastCommand *Note
	lastError   *Note
}

// NewState builds the registry from an area definition. Static objects are
// loaded once here and never mutated afterward.
func NewState(area *world.Area, now time.Time) *State {
	s := &State{
		entities: map[string]*EntityState{},
		houses:   area.Houses,
		stores:   area.Stores,
	}

	for _, p := range area.People {
		s.AddEntity(p.Id, p.Name, p.Location, now)
	}

	return s
}

// AddEntity inserts a new idle, awake entity. Re-adding an existing id resets
// it to a fresh state: world-init is the only call site and ids are expected
// unique, so a duplicate means the world is being reloaded.
func (s *State) AddEntity(id, name string, location geo.Location, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities[id] = NewEntityState(id, name, location, now)
}

// WithEntity runs fn with the named entity while holding the state lock.
// Returns ErrEntityNotFound (wrapped) for unknown ids; fn is not called.
func (s *State) WithEntity(id string, fn func(*EntityState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, id)
	}

	return fn(e)
}

// EntityIds returns all entity ids, sorted for stable iteration.
func (s *State) EntityIds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RecordCommand stores the most recent command for display and debugging.
func (s *State) RecordCommand(text string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastCommand = &Note{Text: text, At: now}
}

// SetLastError records an engine-level warning (typically a delivery
// failure) for display. Most recent wins.
func (s *State) SetLastError(text string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastError = &Note{Text: text, At: now}
}

// EntityView is a point-in-time copy of one entity's state, safe to hold
// without the state lock.
type EntityView struct {
	Id       string
	Name     string
	Location geo.Location
	Target   *geo.Location
	Moving   bool
	Kind     MovementKind
	Distance float64

	Sleeping bool
	// SleepRemaining is nil when awake or sleeping without a deadline.
	SleepRemaining *time.Duration
}

// Snapshot is a point-in-time copy of the whole registry for rendering.
type Snapshot struct {
	Entities    []EntityView
	Houses      []world.StaticObject
	Stores      []world.StaticObject
	LastCommand *Note
	LastError   *Note
}

// EntityView copies a single entity's state, or ErrEntityNotFound.
func (s *State) EntityView(id string, now time.Time) (*EntityView, error) {
	var view *EntityView
	err := s.WithEntity(id, func(e *EntityState) error {
		view = newEntityView(e, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func newEntityView(e *EntityState, now time.Time) *EntityView {
	view := &EntityView{
		Id:       e.id,
		Name:     e.name,
		Location: e.location,
		Target:   e.Target(),
		Moving:   e.moving,
		Kind:     e.kind,
		Sleeping: e.sleeping,
	}
	if d, ok := e.DistanceToTarget(); ok {
		view.Distance = d
	}
	if r, ok := e.SleepTimeRemaining(now); ok {
		remaining := r
		view.SleepRemaining = &remaining
	}
	return view
}

// Snapshot copies the registry state. Rendering and status endpoints work
// from the copy so they never hold live references into the registry.
func (s *State) Snapshot(now time.Time) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Houses:      s.houses,
		Stores:      s.stores,
		LastCommand: s.lastCommand,
		LastError:   s.lastError,
	}

	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		snap.Entities = append(snap.Entities, *newEntityView(s.entities[id], now))
	}

	return snap
}
