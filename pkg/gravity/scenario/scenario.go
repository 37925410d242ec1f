package scenario

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"

	gmath "github.com/knekvasil/gravitas/pkg/gravity/math"
	"github.com/knekvasil/gravitas/pkg/gravity/nbody"
	"github.com/knekvasil/gravitas/pkg/gravity/quadtree"
)

// BodySpec describes one body in a scenario file.
type BodySpec struct {
	Name   string     `yaml:"name,omitempty"`
	Mass   float64    `yaml:"mass"`
	Radius float64    `yaml:"radius,omitempty"`
	Pos    [2]float64 `yaml:"pos"`
	Vel    [2]float64 `yaml:"vel,omitempty"`
}

// Config is a complete simulation scenario. Either Bodies lists the bodies
// explicitly, or BodyCount asks for that many randomly generated ones.
type Config struct {
	Name      string            `yaml:"name"`
	Theta     float64           `yaml:"theta"`
	TimeStep  float64           `yaml:"time_step"`
	Steps     int               `yaml:"steps"`
	G         float64           `yaml:"g,omitempty"`
	Boundary  quadtree.Boundary `yaml:"boundary"`
	AutoOrbit bool              `yaml:"auto_orbit,omitempty"`
	BodyCount int               `yaml:"body_count,omitempty"`
	Seed      uint64            `yaml:"seed,omitempty"`
	Bodies    []BodySpec        `yaml:"bodies,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the scenario to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scenario file: %w", err)
	}
	return nil
}

// Validate checks the scenario for internally consistent parameters.
func (c *Config) Validate() error {
	if c.Theta < 0 {
		return fmt.Errorf("theta must be non-negative, got %g", c.Theta)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("time_step must be positive, got %g", c.TimeStep)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.Boundary.XMin >= c.Boundary.XMax || c.Boundary.YMin >= c.Boundary.YMax {
		return fmt.Errorf("boundary must have positive extent")
	}
	if len(c.Bodies) == 0 && c.BodyCount <= 0 {
		return fmt.Errorf("scenario needs either bodies or a positive body_count")
	}
	for i, b := range c.Bodies {
		if b.Mass <= 0 {
			return fmt.Errorf("body %d: mass must be positive, got %g", i, b.Mass)
		}
		if !c.Boundary.Contains(b.Pos[0], b.Pos[1]) {
			return fmt.Errorf("body %d: position (%g, %g) outside boundary", i, b.Pos[0], b.Pos[1])
		}
	}
	return nil
}

// System builds the runnable N-body system described by the scenario,
// generating random bodies and seeding orbital velocities as configured.
func (c *Config) System() (*nbody.System, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var bodies []nbody.Body
	if len(c.Bodies) > 0 {
		bodies = make([]nbody.Body, len(c.Bodies))
		for i, spec := range c.Bodies {
			bodies[i] = nbody.Body{
				ID:       spec.Name,
				Mass:     spec.Mass,
				Radius:   spec.Radius,
				Position: gmath.Vector2{X: spec.Pos[0], Y: spec.Pos[1]},
				Velocity: gmath.Vector2{X: spec.Vel[0], Y: spec.Vel[1]},
			}
		}
	} else {
		bodies = Generate(c.BodyCount, c.Boundary, c.Seed)
	}

	sys := nbody.NewSystem(bodies, c.Boundary, c.Theta)
	if c.G > 0 {
		sys.G = c.G
	}
	if c.AutoOrbit {
		SetOrbitalVelocities(sys.Bodies, sys.G)
	}
	return sys, nil
}

// Generate produces n randomly placed bodies inside the boundary with
// masses uniform in [1e3, 1e5), zero velocity, and a radius derived from
// mass as if it were a unit-density sphere. The same seed reproduces the
// same body set.
func Generate(n int, boundary quadtree.Boundary, seed uint64) []nbody.Body {
	src := rand.NewSource(seed)
	posX := distuv.Uniform{Min: boundary.XMin, Max: boundary.XMax, Src: src}
	posY := distuv.Uniform{Min: boundary.YMin, Max: boundary.YMax, Src: src}
	mass := distuv.Uniform{Min: 1e3, Max: 1e5, Src: src}

	bodies := make([]nbody.Body, n)
	for i := range bodies {
		m := mass.Rand()
		bodies[i] = nbody.Body{
			ID:       fmt.Sprintf("body-%d", i),
			Mass:     m,
			Radius:   math.Cbrt(m / (4.0 / 3.0 * math.Pi)),
			Position: gmath.Vector2{X: posX.Rand(), Y: posY.Rand()},
		}
	}
	return bodies
}

// SetOrbitalVelocities gives every zero-velocity body (other than the
// first, treated as the central mass) the circular-orbit speed around the
// central body, directed perpendicular to the separation vector.
func SetOrbitalVelocities(bodies []nbody.Body, g float64) {
	if len(bodies) == 0 {
		return
	}
	central := bodies[0]
	for i := 1; i < len(bodies); i++ {
		if !bodies[i].Velocity.IsZero() {
			continue
		}
		sep := bodies[i].Position.Sub(central.Position)
		r := sep.Magnitude()
		if r == 0 {
			continue
		}
		v := math.Sqrt(g * central.Mass / r)
		bodies[i].Velocity = gmath.Vector2{X: -sep.Y / r * v, Y: sep.X / r * v}
	}
}
