package commands

import (
	"context"

	"github.com/pixil98/go-gamesim/internal/geo"
	"github.com/pixil98/go-gamesim/internal/sim"
	"github.com/pixil98/go-log"
)

func (h *Handler) handleTeleport(ctx context.Context, cmd *Command) error {
	// Teleport accepts either field; target wins when both are set.
	var location *geo.Location
	switch {
	case cmd.Target != nil:
		location = cmd.Target
	case cmd.Destination != nil:
		location = cmd.Destination
	default:
		return NewUserError("teleport command requires target location")
	}

	err := h.state.WithEntity(cmd.EntityId, func(e *sim.EntityState) error {
		e.Teleport(*location)
		return nil
	})
	if err != nil {
		return err
	}

	log.GetLogger(ctx).Infof("entity %s teleported to %s", cmd.EntityId, location)
	return nil
}
