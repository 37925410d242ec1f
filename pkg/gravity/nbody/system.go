package nbody

import (
	"fmt"
	"log"

	gmath "github.com/knekvasil/gravitas/pkg/gravity/math"
	"github.com/knekvasil/gravitas/pkg/gravity/quadtree"
)

// System represents the N-body system driven by Barnes-Hut force
// evaluation. Each step rebuilds the quadtree from scratch, queries the
// force on every body and integrates the result; the tree never persists
// across steps.
type System struct {
	Bodies   []Body
	Boundary quadtree.Boundary
	Theta    float64 // Barnes-Hut opening-angle threshold
	G        float64 // Gravitational constant
	Time     float64 // Elapsed simulation time in seconds
}

// NewSystem creates a system over the given bodies and spatial boundary.
// All bodies must lie within the boundary for the lifetime of the run.
func NewSystem(bodies []Body, boundary quadtree.Boundary, theta float64) *System {
	return &System{
		Bodies:   bodies,
		Boundary: boundary,
		Theta:    theta,
		G:        quadtree.DefaultG,
	}
}

// Copy creates a deep copy of the system
func (s *System) Copy() *System {
	newSystem := &System{
		Bodies:   make([]Body, len(s.Bodies)),
		Boundary: s.Boundary,
		Theta:    s.Theta,
		G:        s.G,
		Time:     s.Time,
	}
	copy(newSystem.Bodies, s.Bodies)
	return newSystem
}

// BuildTree constructs a fresh quadtree holding every body in the system.
func (s *System) BuildTree() (*quadtree.Tree, error) {
	tree := quadtree.New(s.Boundary)
	tree.G = s.G
	for i := range s.Bodies {
		if err := tree.Insert(s.Bodies[i].Point()); err != nil {
			return nil, fmt.Errorf("insert body %d (%s): %w", i, s.Bodies[i].ID, err)
		}
	}
	return tree, nil
}

// Step advances the simulation by one timestep: rebuild the tree, evaluate
// the force on each body, then integrate velocities and positions.
func (s *System) Step(dt float64) error {
	tree, err := s.BuildTree()
	if err != nil {
		return err
	}

	for i := range s.Bodies {
		s.Bodies[i].Acceleration = gmath.Vector2{}
	}

	for i := range s.Bodies {
		force := tree.Force(s.Bodies[i].Point(), s.Theta)
		s.Bodies[i].ApplyForce(force)
	}

	for i := range s.Bodies {
		s.Bodies[i].UpdateVelocity(dt)
		s.Bodies[i].UpdatePosition(dt)
	}

	s.Time += dt
	return nil
}

// Run advances the simulation for the given number of steps, emitting a
// snapshot to sink every snapEvery steps (and after the final step). A nil
// sink runs the simulation silently.
func (s *System) Run(steps int, dt float64, snapEvery int, sink SnapshotSink) error {
	if snapEvery <= 0 {
		snapEvery = 1
	}
	if sink != nil {
		if err := sink.OnStart(steps, snapEvery); err != nil {
			return fmt.Errorf("snapshot sink start: %w", err)
		}
	}

	for step := 0; step < steps; step++ {
		if err := s.Step(dt); err != nil {
			return fmt.Errorf("step %d: %w", step+1, err)
		}
		if sink != nil && ((step+1)%snapEvery == 0 || step == steps-1) {
			if err := sink.OnSnapshot(s.Time, s.Bodies); err != nil {
				return fmt.Errorf("snapshot at step %d: %w", step+1, err)
			}
		}
		if (step+1)%100 == 0 {
			log.Printf("completed step %d/%d (t=%.1fs)", step+1, steps, s.Time)
		}
	}

	if sink != nil {
		if err := sink.OnEnd(s.Time); err != nil {
			return fmt.Errorf("snapshot sink end: %w", err)
		}
	}
	return nil
}

// DirectForce computes the exact O(n²) pairwise force on body i, bypassing
// the tree. It is the reference path for accuracy analysis.
func (s *System) DirectForce(i int) gmath.Vector2 {
	var force gmath.Vector2
	b := s.Bodies[i].Point()
	for j := range s.Bodies {
		if j == i {
			continue
		}
		force = force.Add(quadtree.PairwiseForce(s.G, b, s.Bodies[j].Position, s.Bodies[j].Mass))
	}
	return force
}

// KineticEnergy calculates total kinetic energy of the system
func (s *System) KineticEnergy() float64 {
	energy := 0.0
	for _, body := range s.Bodies {
		v2 := body.Velocity.Dot(body.Velocity)
		energy += 0.5 * body.Mass * v2
	}
	return energy
}

// PotentialEnergy calculates total gravitational potential energy
func (s *System) PotentialEnergy() float64 {
	energy := 0.0
	n := len(s.Bodies)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			r := s.Bodies[i].Position.Distance(s.Bodies[j].Position)
			if r > 1e-10 {
				energy -= s.G * s.Bodies[i].Mass * s.Bodies[j].Mass / r
			}
		}
	}
	return energy
}

// TotalEnergy returns the total energy (approximately conserved)
func (s *System) TotalEnergy() float64 {
	return s.KineticEnergy() + s.PotentialEnergy()
}

// TotalMomentum returns the total linear momentum of the system.
func (s *System) TotalMomentum() gmath.Vector2 {
	var p gmath.Vector2
	for _, body := range s.Bodies {
		p = p.Add(body.Velocity.Scale(body.Mass))
	}
	return p
}

// AngularMomentum returns the total angular momentum about the origin
// (z-component; in 2D the in-plane components vanish).
func (s *System) AngularMomentum() float64 {
	total := 0.0
	for _, body := range s.Bodies {
		total += body.Mass * body.Position.Cross(body.Velocity)
	}
	return total
}
