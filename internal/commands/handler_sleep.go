package commands

import (
	"context"
	"time"

	"github.com/pixil98/go-gamesim/internal/sim"
	"github.com/pixil98/go-log"
)

func (h *Handler) handleSleep(ctx context.Context, cmd *Command) error {
	// A non-positive duration means sleep until an explicit wake.
	var duration *time.Duration
	if cmd.Duration != nil && *cmd.Duration > 0 {
		d := time.Duration(*cmd.Duration * float64(time.Second))
		duration = &d
	}

	now := h.now()
	err := h.state.WithEntity(cmd.EntityId, func(e *sim.EntityState) error {
		e.Sleep(now, duration)
		return nil
	})
	if err != nil {
		return err
	}

	logger := log.GetLogger(ctx)
	if duration != nil {
		logger.Infof("entity %s going to sleep for %s", cmd.EntityId, duration)
	} else {
		logger.Infof("entity %s going to sleep", cmd.EntityId)
	}
	return nil
}

func (h *Handler) handleWake(ctx context.Context, cmd *Command) error {
	err := h.state.WithEntity(cmd.EntityId, func(e *sim.EntityState) error {
		e.Wake()
		return nil
	})
	if err != nil {
		return err
	}

	log.GetLogger(ctx).Infof("entity %s waking up", cmd.EntityId)
	return nil
}
