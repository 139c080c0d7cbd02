package listener

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pixil98/go-gamesim/internal/commands"
	"github.com/pixil98/go-gamesim/internal/display"
	"github.com/pixil98/go-gamesim/internal/geo"
	"github.com/pixil98/go-gamesim/internal/sim"
)

const consoleHelp = `commands:
  walk <entity_id> <x> <y> <z>      walk the entity to a point
  run <entity_id> <x> <y> <z>       run the entity to a point
  teleport <entity_id> <x> <y> <z>  place the entity immediately
  sleep <entity_id> [seconds]       put the entity to sleep
  wake <entity_id>                  wake the entity
  status                            show the engine state
  quit                              close the console
`

// ConsoleManager hands accepted console connections (telnet, ssh) to an
// interactive operator session that drives the same command handler as the
// HTTP transport.
type ConsoleManager struct {
	handler *commands.Handler
	state   *sim.State
	view    *display.View
}

func NewConsoleManager(handler *commands.Handler, state *sim.State) (*ConsoleManager, error) {
	view, err := display.NewView(state, io.Discard)
	if err != nil {
		return nil, fmt.Errorf("creating status view: %w", err)
	}

	return &ConsoleManager{
		handler: handler,
		state:   state,
		view:    view,
	}, nil
}

func (m *ConsoleManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	if err := m.runSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "console session", "error", err)
	}
}

func (m *ConsoleManager) runSession(ctx context.Context, conn io.ReadWriter) error {
	fmt.Fprint(conn, "game engine console - type 'help' for commands\n")

	scanner := bufio.NewScanner(conn)
	for {
		if _, err := conn.Write([]byte("> ")); err != nil {
			return err
		}

		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			fmt.Fprint(conn, "bye\n")
			return nil

		case "help":
			fmt.Fprint(conn, consoleHelp)

		case "status":
			now := time.Now()
			text, err := m.view.Render(m.state.Snapshot(now), now)
			if err != nil {
				fmt.Fprintf(conn, "error: %s\n", err)
				continue
			}
			fmt.Fprint(conn, text)

		default:
			cmd, err := parseConsoleCommand(fields)
			if err != nil {
				fmt.Fprintf(conn, "error: %s\n", err)
				continue
			}
			if err := m.handler.Handle(ctx, cmd); err != nil {
				fmt.Fprintf(conn, "error: %s\n", err)
				continue
			}
			fmt.Fprint(conn, "ok\n")
		}
	}
}

func parseConsoleCommand(fields []string) (*commands.Command, error) {
	cmd := &commands.Command{Command: fields[0]}

	switch fields[0] {
	case "walk", "run", "teleport":
		if len(fields) != 5 {
			return nil, fmt.Errorf("usage: %s <entity_id> <x> <y> <z>", fields[0])
		}
		cmd.EntityId = fields[1]
		loc, err := parseLocation(fields[2:5])
		if err != nil {
			return nil, err
		}
		cmd.Destination = loc

	case "sleep":
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("usage: sleep <entity_id> [seconds]")
		}
		cmd.EntityId = fields[1]
		if len(fields) == 3 {
			seconds, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing duration %q: %w", fields[2], err)
			}
			cmd.Duration = &seconds
		}

	case "wake":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: wake <entity_id>")
		}
		cmd.EntityId = fields[1]

	default:
		return nil, fmt.Errorf("unknown command: %s (try 'help')", fields[0])
	}

	return cmd, nil
}

func parseLocation(fields []string) (*geo.Location, error) {
	coords := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing coordinate %q: %w", f, err)
		}
		coords[i] = v
	}
	return &geo.Location{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
