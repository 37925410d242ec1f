package scenario

import (
	"fmt"
	"sort"

	"github.com/knekvasil/gravitas/pkg/gravity/quadtree"
)

// Preset names.
const (
	PresetRandomCloud = "random-cloud"
	PresetEarthMoon   = "earth-moon"
	PresetTwoBody     = "two-body"
)

// presets holds the built-in scenario configurations.
var presets = map[string]func() *Config{
	// 100 bodies scattered in a ±1e6 m box with SI gravity, the classic
	// small Barnes-Hut benchmark setup.
	PresetRandomCloud: func() *Config {
		return &Config{
			Name:      PresetRandomCloud,
			Theta:     0.5,
			TimeStep:  1.0,
			Steps:     10,
			Boundary:  quadtree.Square(1e6),
			BodyCount: 100,
			Seed:      42,
		}
	},

	// Earth and Moon at their mean separation; the Moon starts on a
	// circular orbit (~1.02 km/s).
	PresetEarthMoon: func() *Config {
		return &Config{
			Name:      PresetEarthMoon,
			Theta:     0.5,
			TimeStep:  60.0,
			Steps:     1440,
			Boundary:  quadtree.Square(1e9),
			AutoOrbit: true,
			Bodies: []BodySpec{
				{Name: "earth", Mass: 5.97e24, Radius: 6.371e6, Pos: [2]float64{0, 0}},
				{Name: "moon", Mass: 7.35e22, Radius: 1.737e6, Pos: [2]float64{3.844e8, 0}},
			},
		}
	},

	// Symmetric unit-scale pair in scaled units (G=1), useful for
	// eyeballing momentum and symmetry behavior.
	PresetTwoBody: func() *Config {
		return &Config{
			Name:     PresetTwoBody,
			Theta:    0.5,
			TimeStep: 0.01,
			Steps:    1000,
			G:        1.0,
			Boundary: quadtree.Square(10),
			Bodies: []BodySpec{
				{Name: "a", Mass: 1.0, Pos: [2]float64{-1, 0}, Vel: [2]float64{0, -0.35}},
				{Name: "b", Mass: 1.0, Pos: [2]float64{1, 0}, Vel: [2]float64{0, 0.35}},
			},
		}
	},
}

// Preset returns a copy of the named built-in scenario.
func Preset(name string) (*Config, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %v)", name, Presets())
	}
	return build(), nil
}

// Presets lists the built-in scenario names in stable order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
