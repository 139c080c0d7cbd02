package sim

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-gamesim/internal/geo"
)

// Backend endpoints events are delivered to.
const (
	EndpointCommand = "command"
	EndpointEvent   = "event"
)

// Event is an outbound transition event bound for the backend. The payload is
// fully marshalled at creation time, so delivery always works from a copy of
// the triggering state and never a live reference into the registry.
type Event struct {
	Id       string          `json:"id"`
	Endpoint string          `json:"endpoint"`
	Payload  json.RawMessage `json:"payload"`
}

// EventPublisher hands transition events off for delivery.
type EventPublisher interface {
	PublishEvent(*Event) error
}

type moveToCommand struct {
	Command     string       `json:"command"`
	EntityId    string       `json:"entity_id"`
	Destination geo.Location `json:"destination"`
}

type wokeUpEvent struct {
	Event     string   `json:"event"`
	EntityId  string   `json:"entity_id"`
	Target    struct{} `json:"target"`
	Timestamp string   `json:"timestamp"`
}

// NewArrivalEvent builds the position update pushed when an entity reaches
// its movement target. The backend models it as a synthetic move_to command.
func NewArrivalEvent(entityId string, location geo.Location) (*Event, error) {
	payload, err := json.Marshal(&moveToCommand{
		Command:     "move_to",
		EntityId:    entityId,
		Destination: location,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling move_to payload: %w", err)
	}

	return &Event{
		Id:       uuid.NewString(),
		Endpoint: EndpointCommand,
		Payload:  payload,
	}, nil
}

// NewWokeUpEvent builds the event pushed when a sleeping entity's wake
// deadline passes.
func NewWokeUpEvent(entityId string, now time.Time) (*Event, error) {
	payload, err := json.Marshal(&wokeUpEvent{
		Event:     "woke_up",
		EntityId:  entityId,
		Timestamp: now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling woke_up payload: %w", err)
	}

	return &Event{
		Id:       uuid.NewString(),
		Endpoint: EndpointEvent,
		Payload:  payload,
	}, nil
}
