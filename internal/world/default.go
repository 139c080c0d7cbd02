package world

import "github.com/pixil98/go-gamesim/internal/geo"

// DefaultArea returns the built-in test area used when no area file is
// configured.
func DefaultArea() *Area {
	return &Area{
		AreaId: "test_area",
		Houses: []StaticObject{
			{
				Id:         "house_001",
				Name:       "Victorian Mansion",
				Location:   geo.Location{X: 100.0, Y: 0.0, Z: 100.0},
				Properties: map[string]any{"style": "victorian", "rooms": 4},
			},
		},
		Stores: []StaticObject{
			{
				Id:         "store_001",
				Name:       "General Store",
				Type:       "retail",
				Location:   geo.Location{X: 120.0, Y: 0.0, Z: 120.0},
				Properties: map[string]any{"size": "medium"},
			},
		},
		People: []Person{
			{
				Id:         "person_001",
				Name:       "John Walker",
				Sex:        "male",
				Location:   geo.Location{X: 100.0, Y: 0.0, Z: 100.0},
				Properties: map[string]any{"age": 30},
				State:      "sleeping",
			},
			{
				Id:         "person_002",
				Name:       "Sarah Chen",
				Sex:        "female",
				Location:   geo.Location{X: 150.0, Y: 0.0, Z: 150.0},
				Properties: map[string]any{"age": 25},
				State:      "sleeping",
			},
		},
		Metadata: map[string]any{
			"time_of_day": "morning",
			"weather":     "sunny",
		},
	}
}
