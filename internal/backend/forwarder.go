package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-gamesim/internal/messaging"
	"github.com/pixil98/go-gamesim/internal/sim"
	"github.com/pixil98/go-gamesim/internal/world"
)

// InitEndpoint receives the world configuration payload.
const InitEndpoint = "area-config"

// StatusRecorder receives engine-level delivery failures for observability.
// *sim.State satisfies it.
type StatusRecorder interface {
	SetLastError(text string, now time.Time)
}

// Forwarder is the delivery worker. It subscribes to the bus, pushes the
// world configuration to the backend (polling until the backend is reachable
// - the world cannot proceed without it), and only then signals ready; from
// there it consumes transition events and delivers each with bounded retry.
// Exhausted deliveries are recorded as the engine's current error and the
// forwarder moves on; later events are unaffected.
type Forwarder struct {
	client *Client
	bus    messaging.Bus
	area   *world.Area
	status StatusRecorder

	ready chan struct{}
	queue chan *sim.Event
	now   func() time.Time
}

func NewForwarder(client *Client, bus messaging.Bus, area *world.Area, status StatusRecorder) *Forwarder {
	return &Forwarder{
		client: client,
		bus:    bus,
		area:   area,
		status: status,
		ready:  make(chan struct{}),
		queue:  make(chan *sim.Event, 64),
		now:    time.Now,
	}
}

// Ready is closed once world-init has reached the backend. The simulation
// driver gates ticking on it.
func (f *Forwarder) Ready() <-chan struct{} {
	return f.ready
}

func (f *Forwarder) Start(ctx context.Context) error {
	// Subscribe before signalling ready so no transition event can slip
	// through between the gate opening and the subscription existing.
	unsubscribe, err := f.subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", messaging.SubjectEvents, err)
	}
	defer unsubscribe()

	err = f.client.SendUntilReachable(ctx, InitEndpoint, f.area.InitPayload(f.now()))
	if err != nil {
		return fmt.Errorf("sending world configuration: %w", err)
	}
	slog.InfoContext(ctx, "world configuration sent", "area", f.area.AreaId)
	close(f.ready)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-f.queue:
			f.deliver(ctx, ev)
		}
	}
}

// subscribe retries until the bus accepts the subscription. Workers start
// concurrently, so the bus may not have its internal connection up yet when
// the forwarder gets here.
func (f *Forwarder) subscribe(ctx context.Context) (func(), error) {
	for {
		unsubscribe, err := f.bus.Subscribe(messaging.SubjectEvents, f.enqueue)
		if err == nil {
			return unsubscribe, nil
		}

		slog.WarnContext(ctx, "waiting for event bus", "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// enqueue runs on the bus callback goroutine; it must not block a tick, so a
// full queue drops the event with a warning rather than backing up.
func (f *Forwarder) enqueue(data []byte) {
	var ev sim.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		slog.Warn("discarding malformed event", "error", err)
		return
	}

	select {
	case f.queue <- &ev:
	default:
		slog.Warn("delivery queue full, dropping event", "event", ev.Id, "endpoint", ev.Endpoint)
	}
}

func (f *Forwarder) deliver(ctx context.Context, ev *sim.Event) {
	err := f.client.Send(ctx, ev.Endpoint, ev.Payload)
	if err != nil {
		slog.WarnContext(ctx, "delivering event", "event", ev.Id, "error", err)
		f.status.SetLastError(fmt.Sprintf("failed to communicate with backend: %s", err), f.now())
	}
}
