package command

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-gamesim/internal/backend"
	"github.com/pixil98/go-gamesim/internal/commands"
	"github.com/pixil98/go-gamesim/internal/display"
	"github.com/pixil98/go-gamesim/internal/driver"
	"github.com/pixil98/go-gamesim/internal/listener"
	"github.com/pixil98/go-gamesim/internal/messaging"
	"github.com/pixil98/go-gamesim/internal/sim"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Create the event bus
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	// Load the world definition and seed the simulation state
	area, err := cfg.World.buildArea()
	if err != nil {
		return nil, fmt.Errorf("loading area: %w", err)
	}
	state := sim.NewState(area, time.Now())
	handler := commands.NewHandler(state)

	// Setup backend delivery: the forwarder announces the world, then
	// relays transition events off the bus
	client, err := cfg.Backend.buildClient()
	if err != nil {
		return nil, fmt.Errorf("creating backend client: %w", err)
	}
	forwarder := backend.NewForwarder(client, natsServer, area, state)

	// The simulation holds its first tick until the forwarder has
	// announced the world to the backend
	manager := sim.NewManager(state, messaging.NewEventPublisher(natsServer),
		sim.WithReadyGate(forwarder.Ready()))
	simDriver := driver.NewDriver([]driver.Ticker{manager},
		driver.WithInterval(cfg.tickInterval()))

	view, err := display.NewView(state, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("creating display: %w", err)
	}
	displayDriver := driver.NewDriver([]driver.Ticker{view},
		driver.WithInterval(cfg.displayInterval()))

	// Create operator consoles
	consoleManager, err := listener.NewConsoleManager(handler, state)
	if err != nil {
		return nil, fmt.Errorf("creating console manager: %w", err)
	}
	consoles := make(service.WorkerList, len(cfg.Consoles))
	for i, c := range cfg.Consoles {
		console, err := c.buildConsole(consoleManager)
		if err != nil {
			return nil, fmt.Errorf("creating console %d: %w", i, err)
		}
		consoles[fmt.Sprintf("console-%d", i)] = console
	}

	return service.WorkerList{
		"nats":      natsServer,
		"forwarder": forwarder,
		"driver":    simDriver,
		"display":   displayDriver,
		"listener":  cfg.Listener.buildListener(handler, state),
		"consoles":  &consoles,
	}, nil
}
