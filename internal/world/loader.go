package world

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadArea reads an area definition from a JSON file and validates it.
func LoadArea(path string) (*Area, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var area Area
	err = json.Unmarshal(data, &area)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling area: %w", err)
	}

	err = area.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating area: %w", err)
	}

	return &area, nil
}
