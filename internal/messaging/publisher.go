package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-gamesim/internal/sim"
)

// SubjectEvents is the bus subject transition events travel on.
const SubjectEvents = "engine.events"

// Bus is the subset of NatsServer the publisher and forwarder need. Tests
// substitute an in-memory implementation.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// EventPublisher puts simulation transition events onto the bus. It
// implements sim.EventPublisher.
type EventPublisher struct {
	bus Bus
}

func NewEventPublisher(bus Bus) *EventPublisher {
	return &EventPublisher{bus: bus}
}

func (p *EventPublisher) PublishEvent(ev *sim.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshalling event %s: %w", ev.Id, err)
	}
	return p.bus.Publish(SubjectEvents, data)
}
