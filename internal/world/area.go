package world

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-gamesim/internal/geo"
)

// StaticObject is an immutable fixture in the area (house, store). The
// simulation reads these for display only and never mutates them.
type StaticObject struct {
	Id         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type,omitempty"`
	Location   geo.Location   `json:"location"`
	Properties map[string]any `json:"properties,omitempty"`
}

func (o *StaticObject) validate() error {
	el := errors.NewErrorList()

	if o.Id == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if o.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}

	return el.Err()
}

// Person describes an entity to be simulated, as loaded from an area
// definition. The live movement and sleep state lives in the sim package.
type Person struct {
	Id         string         `json:"id"`
	Name       string         `json:"name"`
	Sex        string         `json:"sex,omitempty"`
	Location   geo.Location   `json:"location"`
	Properties map[string]any `json:"properties,omitempty"`
	State      string         `json:"state,omitempty"`
}

func (p *Person) validate() error {
	el := errors.NewErrorList()

	if p.Id == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if p.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}

	return el.Err()
}

// Area is a complete world definition: the static fixtures plus the people to
// simulate. Loaded once at startup and treated as read-only afterward.
type Area struct {
	AreaId   string         `json:"area_id"`
	Houses   []StaticObject `json:"houses"`
	Stores   []StaticObject `json:"stores"`
	People   []Person       `json:"people"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (a *Area) Validate() error {
	el := errors.NewErrorList()

	if a.AreaId == "" {
		el.Add(fmt.Errorf("area_id is required"))
	}

	seen := map[string]bool{}
	check := func(kind, id string) {
		if id == "" {
			return
		}
		if seen[id] {
			el.Add(fmt.Errorf("%s: duplicate id %q", kind, id))
		}
		seen[id] = true
	}

	for i, h := range a.Houses {
		if err := h.validate(); err != nil {
			el.Add(fmt.Errorf("house %d: %w", i, err))
		}
		check("house", h.Id)
	}
	for i, s := range a.Stores {
		if err := s.validate(); err != nil {
			el.Add(fmt.Errorf("store %d: %w", i, err))
		}
		check("store", s.Id)
	}
	for i, p := range a.People {
		if err := p.validate(); err != nil {
			el.Add(fmt.Errorf("person %d: %w", i, err))
		}
		check("person", p.Id)
	}

	return el.Err()
}

// InitPayload is the world configuration pushed to the backend before the
// simulation starts ticking.
type InitPayload struct {
	Timestamp string         `json:"timestamp"`
	AreaId    string         `json:"area_id"`
	Houses    []StaticObject `json:"houses"`
	Stores    []StaticObject `json:"stores"`
	People    []Person       `json:"people"`
	Metadata  map[string]any `json:"metadata"`
}

// InitPayload builds the backend payload for this area.
func (a *Area) InitPayload(now time.Time) *InitPayload {
	return &InitPayload{
		Timestamp: now.Format(time.RFC3339),
		AreaId:    a.AreaId,
		Houses:    a.Houses,
		Stores:    a.Stores,
		People:    a.People,
		Metadata:  a.Metadata,
	}
}
