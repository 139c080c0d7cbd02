package commands

import (
	"fmt"

	"github.com/pixil98/go-gamesim/internal/geo"
)

// Command is an inbound operator command as received from the backend.
// Location fields are pointers so a missing field is distinguishable from the
// origin.
type Command struct {
	Command  string `json:"command"`
	EntityId string `json:"entity_id"`

	Target      *geo.Location `json:"target,omitempty"`
	Destination *geo.Location `json:"destination,omitempty"`
	Direction   *geo.Location `json:"direction,omitempty"`
	TargetName  string        `json:"target_name,omitempty"`
	Speed       float64       `json:"speed,omitempty"`
	// Duration is in seconds. For sleep, nil or non-positive means sleep
	// indefinitely.
	Duration *float64 `json:"duration,omitempty"`
}

// Validate checks the fields every command needs. Per-command requirements
// (destination, target) are checked by the handlers.
func (c *Command) Validate() error {
	if c.Command == "" {
		return NewUserError("command is required")
	}
	if c.EntityId == "" {
		return NewUserError("entity_id is required")
	}
	return nil
}

// String renders a short human-readable summary for the command record.
func (c *Command) String() string {
	switch {
	case c.Destination != nil:
		return fmt.Sprintf("%s %s -> %s", c.Command, c.EntityId, c.Destination)
	case c.Target != nil:
		return fmt.Sprintf("%s %s -> %s", c.Command, c.EntityId, c.Target)
	case c.Duration != nil:
		return fmt.Sprintf("%s %s for %.0fs", c.Command, c.EntityId, *c.Duration)
	default:
		return fmt.Sprintf("%s %s", c.Command, c.EntityId)
	}
}
