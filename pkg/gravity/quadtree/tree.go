package quadtree

import (
	"errors"
	"fmt"

	gmath "github.com/knekvasil/gravitas/pkg/gravity/math"
)

// ErrOutOfBounds is returned by Tree.Insert for a body outside the root
// boundary. Routing such a body into the tree would be undefined (it can
// silently vanish from a subtree), so the containment contract is enforced
// at the facade.
var ErrOutOfBounds = errors.New("quadtree: body outside tree boundary")

// Tree binds a root node to a fixed boundary. The boundary never changes
// after construction: the simulation builds a fresh tree each step rather
// than mutating one in place.
type Tree struct {
	root     *Node
	boundary Boundary

	// G is the gravitational constant used in force evaluation.
	G float64
}

// New creates an empty tree spanning the given boundary.
func New(boundary Boundary) *Tree {
	return &Tree{
		root:     &Node{},
		boundary: boundary,
		G:        DefaultG,
	}
}

// Insert adds a body to the tree. The body must lie within the tree's
// boundary.
func (t *Tree) Insert(b Body) error {
	if !t.boundary.Contains(b.Position.X, b.Position.Y) {
		return fmt.Errorf("%w: position (%g, %g)", ErrOutOfBounds, b.Position.X, b.Position.Y)
	}
	t.root.Insert(b, t.boundary)
	return nil
}

// Force returns the gravitational force on b from all bodies in the tree,
// approximated with opening-angle threshold theta. Smaller theta recurses
// deeper (more accurate, slower); theta of zero is the exact pairwise sum.
func (t *Tree) Force(b Body, theta float64) gmath.Vector2 {
	return t.root.Force(b, t.boundary, t.G, theta)
}

// Boundary returns the fixed boundary the tree spans, for reuse when
// rebuilding on the next simulation step.
func (t *Tree) Boundary() Boundary {
	return t.boundary
}

// TotalMass returns the aggregate mass of all inserted bodies.
func (t *Tree) TotalMass() float64 {
	return t.root.TotalMass()
}

// CenterOfMass returns the mass-weighted average position of all inserted
// bodies.
func (t *Tree) CenterOfMass() gmath.Vector2 {
	return t.root.CenterOfMass()
}
