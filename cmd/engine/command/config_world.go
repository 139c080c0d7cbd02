package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-gamesim/internal/world"
)

type WorldConfig struct {
	AreaPath string `json:"area_path,omitempty"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if c.AreaPath != "" {
		_, err := os.Stat(c.AreaPath)
		if err != nil {
			el.Add(fmt.Errorf("invalid area_path %q: %w", c.AreaPath, err))
		}
	}

	return el.Err()
}

// buildArea loads the configured area definition, or the built-in test area
// when none is configured.
func (c *WorldConfig) buildArea() (*world.Area, error) {
	if c.AreaPath == "" {
		return world.DefaultArea(), nil
	}
	return world.LoadArea(c.AreaPath)
}
