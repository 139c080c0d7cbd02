package command

import (
	"github.com/pixil98/go-gamesim/internal/commands"
	"github.com/pixil98/go-gamesim/internal/listener"
	"github.com/pixil98/go-gamesim/internal/sim"
)

const defaultCommandPort uint16 = 8001

type ListenerConfig struct {
	Port uint16 `json:"port"`
}

// validate accepts a zero port, which selects the default command port.
func (c *ListenerConfig) validate() error {
	return nil
}

func (c *ListenerConfig) buildListener(handler *commands.Handler, state *sim.State) *listener.HTTPListener {
	port := c.Port
	if port == 0 {
		port = defaultCommandPort
	}
	return listener.NewHTTPListener(port, handler, state)
}
