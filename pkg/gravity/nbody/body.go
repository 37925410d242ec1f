package nbody

import (
	gmath "github.com/knekvasil/gravitas/pkg/gravity/math"
	"github.com/knekvasil/gravitas/pkg/gravity/quadtree"
)

// Body represents a point mass in the simulation
type Body struct {
	ID           string        `json:"id,omitempty"`
	Mass         float64       `json:"mass"`
	Radius       float64       `json:"radius,omitempty"`
	Position     gmath.Vector2 `json:"position"`
	Velocity     gmath.Vector2 `json:"velocity"`
	Acceleration gmath.Vector2 `json:"-"`
}

// ApplyForce converts a force into the body's acceleration (a = F/m).
func (b *Body) ApplyForce(force gmath.Vector2) {
	b.Acceleration = force.Scale(1.0 / b.Mass)
}

// UpdateVelocity advances the velocity by one timestep.
func (b *Body) UpdateVelocity(dt float64) {
	b.Velocity = b.Velocity.Add(b.Acceleration.Scale(dt))
}

// UpdatePosition advances the position by one timestep using the current
// velocity plus the ½·a·dt² kinematic term.
func (b *Body) UpdatePosition(dt float64) {
	b.Position = b.Position.
		Add(b.Velocity.Scale(dt)).
		Add(b.Acceleration.Scale(0.5 * dt * dt))
}

// Point returns the read-only view of the body the quadtree consumes.
func (b *Body) Point() quadtree.Body {
	return quadtree.Body{Position: b.Position, Mass: b.Mass}
}
