package quadtree

import (
	"math"

	gmath "github.com/knekvasil/gravitas/pkg/gravity/math"
)

// DefaultG is the Newtonian gravitational constant in SI units
// (m³/(kg·s²)). Scaled-unit scenarios override it on the Tree.
const DefaultG = 6.67430e-11

// forceEpsilon guards the force law against coincident and near-coincident
// points, where 1/d² blows up.
const forceEpsilon = 1e-10

// Body is the read-only view of a simulated body the tree works with. The
// tree stores copies; it never owns or mutates driver state.
type Body struct {
	Position gmath.Vector2
	Mass     float64
}

type nodeKind uint8

const (
	kindEmpty nodeKind = iota
	kindLeaf
	kindInternal
)

// Node is a quadtree node in one of three states: empty, leaf (one body) or
// internal (up to four children plus cached aggregates). The zero value is
// an empty node.
type Node struct {
	kind nodeKind

	// leaf only
	body Body

	// internal only
	centerOfMass gmath.Vector2
	totalMass    float64
	children     [4]*Node
}

// Insert places b into the subtree rooted at n, where bounds is the region
// n spans. Bodies at the bit-for-bit identical position of an already-stored
// body are ignored: a deliberate approximation that bounds subdivision depth
// for coincident points, not a rounding tolerance.
func (n *Node) Insert(b Body, bounds Boundary) {
	switch n.kind {
	case kindEmpty:
		n.kind = kindLeaf
		n.body = b

	case kindLeaf:
		if n.body.Position == b.Position {
			return
		}
		existing := n.body
		n.kind = kindInternal
		n.body = Body{}

		quads := bounds.Subdivide()
		for i, q := range quads {
			if q.Contains(existing.Position.X, existing.Position.Y) {
				n.children[i] = &Node{kind: kindLeaf, body: existing}
				break
			}
		}
		for i, q := range quads {
			if q.Contains(b.Position.X, b.Position.Y) {
				if n.children[i] == nil {
					n.children[i] = &Node{kind: kindLeaf, body: b}
				} else {
					// Same quadrant as the existing body: subdivide further.
					n.children[i].Insert(b, q)
				}
				break
			}
		}
		n.recomputeAggregates()

	case kindInternal:
		quads := bounds.Subdivide()
		for i, q := range quads {
			if q.Contains(b.Position.X, b.Position.Y) {
				if n.children[i] == nil {
					n.children[i] = &Node{}
				}
				n.children[i].Insert(b, q)
				break
			}
		}
		n.recomputeAggregates()
	}
}

// recomputeAggregates rebuilds this node's total mass and center of mass
// from its four children. Children already carry their own aggregates, so
// this is O(1) rather than a subtree re-scan.
func (n *Node) recomputeAggregates() {
	var mass, mx, my float64
	for _, c := range n.children {
		if c == nil {
			continue
		}
		switch c.kind {
		case kindLeaf:
			mass += c.body.Mass
			mx += c.body.Position.X * c.body.Mass
			my += c.body.Position.Y * c.body.Mass
		case kindInternal:
			mass += c.totalMass
			mx += c.centerOfMass.X * c.totalMass
			my += c.centerOfMass.Y * c.totalMass
		}
	}
	n.totalMass = mass
	if mass > 0 {
		n.centerOfMass = gmath.Vector2{X: mx / mass, Y: my / mass}
	} else {
		n.centerOfMass = gmath.Vector2{}
	}
}

// Force returns the gravitational force on b exerted by the bodies in the
// subtree rooted at n. bounds is the region n spans, threaded through the
// recursion exactly like Insert so no node has to reconstruct its own
// extent. An internal node whose opening angle s/d falls below theta is
// treated as a single point mass at its center of mass.
func (n *Node) Force(b Body, bounds Boundary, g, theta float64) gmath.Vector2 {
	switch n.kind {
	case kindLeaf:
		// A body exerts no force on itself; same position-equality working
		// definition as Insert.
		if n.body.Position == b.Position {
			return gmath.Vector2{}
		}
		return PairwiseForce(g, b, n.body.Position, n.body.Mass)

	case kindInternal:
		d := b.Position.Distance(n.centerOfMass)
		if d == 0 || bounds.Width()/d < theta {
			return PairwiseForce(g, b, n.centerOfMass, n.totalMass)
		}
		quads := bounds.Subdivide()
		var force gmath.Vector2
		for i, c := range n.children {
			if c != nil {
				force = force.Add(c.Force(b, quads[i], g, theta))
			}
		}
		return force

	default:
		return gmath.Vector2{}
	}
}

// TotalMass returns the aggregate mass of all bodies in the subtree.
func (n *Node) TotalMass() float64 {
	switch n.kind {
	case kindLeaf:
		return n.body.Mass
	case kindInternal:
		return n.totalMass
	default:
		return 0
	}
}

// CenterOfMass returns the mass-weighted average position of all bodies in
// the subtree. For an empty node it is the zero vector.
func (n *Node) CenterOfMass() gmath.Vector2 {
	switch n.kind {
	case kindLeaf:
		return n.body.Position
	case kindInternal:
		return n.centerOfMass
	default:
		return gmath.Vector2{}
	}
}

// PairwiseForce returns the Newtonian force on b exerted by a point of the
// given mass at pos: G·m₁·m₂/d² directed from b toward pos (attractive).
// Distances below a small epsilon yield zero force instead of a numerically
// divergent result.
func PairwiseForce(g float64, b Body, pos gmath.Vector2, mass float64) gmath.Vector2 {
	delta := pos.Sub(b.Position)
	d2 := delta.Dot(delta)
	d := math.Sqrt(d2)
	if d < forceEpsilon {
		return gmath.Vector2{}
	}
	f := g * b.Mass * mass / d2
	return delta.Scale(f / d)
}
