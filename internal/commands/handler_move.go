package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/go-gamesim/internal/sim"
	"github.com/pixil98/go-log"
)

func (h *Handler) handleMove(ctx context.Context, cmd *Command) error {
	if cmd.Destination == nil {
		return NewUserError(fmt.Sprintf("%s command requires destination", cmd.Command))
	}

	kind := sim.MovementWalk
	if cmd.Command == "run" {
		kind = sim.MovementRun
	}

	err := h.state.WithEntity(cmd.EntityId, func(e *sim.EntityState) error {
		e.SetMovementTarget(*cmd.Destination, kind)
		return nil
	})
	if err != nil {
		return err
	}

	log.GetLogger(ctx).Infof("entity %s starting %s to %s", cmd.EntityId, cmd.Command, cmd.Destination)
	return nil
}
