package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/pixil98/go-gamesim/internal/sim"
)

// Handler validates inbound commands and applies them to the simulation
// registry. Validation failures are returned as *UserError; unknown entity
// ids as sim.ErrEntityNotFound. Neither mutates any entity state.
type Handler struct {
	state *sim.State
	now   func() time.Time
}

func NewHandler(state *sim.State) *Handler {
	return &Handler{
		state: state,
		now:   time.Now,
	}
}

// Handle dispatches a single command. Every command, valid or not, is
// recorded in the registry's last-command slot for observability.
func (h *Handler) Handle(ctx context.Context, cmd *Command) error {
	err := cmd.Validate()
	if err != nil {
		return err
	}

	h.state.RecordCommand(cmd.String(), h.now())

	switch cmd.Command {
	case "walk", "run":
		return h.handleMove(ctx, cmd)
	case "teleport":
		return h.handleTeleport(ctx, cmd)
	case "sleep":
		return h.handleSleep(ctx, cmd)
	case "wake":
		return h.handleWake(ctx, cmd)
	default:
		return NewUserError(fmt.Sprintf("unknown command: %s", cmd.Command))
	}
}

// EntityView returns a copy of an entity's current state, used by transports
// to echo the post-command state back to the caller.
func (h *Handler) EntityView(id string) (*sim.EntityView, error) {
	return h.state.EntityView(id, h.now())
}
