package quadtree

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	gmath "github.com/knekvasil/gravitas/pkg/gravity/math"
)

func randomBodies(n int, boundary Boundary, seed int64) []Body {
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]Body, n)
	for i := range bodies {
		bodies[i] = Body{
			Position: gmath.Vector2{
				X: boundary.XMin + rng.Float64()*boundary.Width(),
				Y: boundary.YMin + rng.Float64()*boundary.Height(),
			},
			Mass: 1.0 + rng.Float64()*9.0,
		}
	}
	return bodies
}

// directSum computes the exact pairwise force on b from all bodies, skipping
// coincident positions the same way the tree does.
func directSum(g float64, b Body, bodies []Body) gmath.Vector2 {
	var force gmath.Vector2
	for _, other := range bodies {
		if other.Position == b.Position {
			continue
		}
		force = force.Add(PairwiseForce(g, b, other.Position, other.Mass))
	}
	return force
}

// collectBodies gathers every body stored beneath n.
func collectBodies(n *Node) []Body {
	switch n.kind {
	case kindLeaf:
		return []Body{n.body}
	case kindInternal:
		var out []Body
		for _, c := range n.children {
			if c != nil {
				out = append(out, collectBodies(c)...)
			}
		}
		return out
	default:
		return nil
	}
}

func TestBoundaryContainsInclusiveEdges(t *testing.T) {
	b := Boundary{XMin: -1, XMax: 1, YMin: -2, YMax: 2}

	assert.True(t, b.Contains(0, 0))
	assert.True(t, b.Contains(-1, -2), "min corner is inclusive")
	assert.True(t, b.Contains(1, 2), "max corner is inclusive")
	assert.False(t, b.Contains(1.0001, 0))
	assert.False(t, b.Contains(0, -2.0001))
}

func TestBoundarySubdivide(t *testing.T) {
	b := Boundary{XMin: 0, XMax: 4, YMin: 0, YMax: 4}
	quads := b.Subdivide()

	// Fixed order: bottom-left, bottom-right, top-left, top-right.
	assert.Equal(t, Boundary{XMin: 0, XMax: 2, YMin: 0, YMax: 2}, quads[0])
	assert.Equal(t, Boundary{XMin: 2, XMax: 4, YMin: 0, YMax: 2}, quads[1])
	assert.Equal(t, Boundary{XMin: 0, XMax: 2, YMin: 2, YMax: 4}, quads[2])
	assert.Equal(t, Boundary{XMin: 2, XMax: 4, YMin: 2, YMax: 4}, quads[3])

	// The union exactly covers the parent.
	for _, q := range quads {
		assert.Equal(t, b.Width()/2, q.Width())
		assert.Equal(t, b.Height()/2, q.Height())
	}

	// A point on the shared midline is contained by more than one quadrant.
	onEdge := 0
	for _, q := range quads {
		if q.Contains(2, 1) {
			onEdge++
		}
	}
	assert.Equal(t, 2, onEdge)
}

func TestMassConservation(t *testing.T) {
	boundary := Square(1000)
	bodies := randomBodies(200, boundary, 1)

	tree := New(boundary)
	var want float64
	for _, b := range bodies {
		require.NoError(t, tree.Insert(b))
		want += b.Mass
	}

	assert.True(t, scalar.EqualWithinRel(tree.TotalMass(), want, 1e-12),
		"root mass %g, sum of inserted masses %g", tree.TotalMass(), want)
}

func TestAggregateInvariants(t *testing.T) {
	boundary := Square(1000)
	bodies := randomBodies(150, boundary, 2)

	tree := New(boundary)
	for _, b := range bodies {
		require.NoError(t, tree.Insert(b))
	}

	// Every internal node's aggregates must equal the mass sum and
	// mass-weighted mean position of the bodies beneath it.
	var check func(n *Node)
	check = func(n *Node) {
		if n.kind != kindInternal {
			return
		}
		under := collectBodies(n)
		var mass, mx, my float64
		for _, b := range under {
			mass += b.Mass
			mx += b.Position.X * b.Mass
			my += b.Position.Y * b.Mass
		}
		assert.True(t, scalar.EqualWithinRel(n.totalMass, mass, 1e-12))
		assert.True(t, scalar.EqualWithinAbsOrRel(n.centerOfMass.X, mx/mass, 1e-9, 1e-9))
		assert.True(t, scalar.EqualWithinAbsOrRel(n.centerOfMass.Y, my/mass, 1e-9, 1e-9))
		for _, c := range n.children {
			if c != nil {
				check(c)
			}
		}
	}
	check(tree.root)
}

func TestForceMatchesDirectSumAtThetaZero(t *testing.T) {
	boundary := Square(100)
	bodies := randomBodies(50, boundary, 3)

	tree := New(boundary)
	tree.G = 1.0
	for _, b := range bodies {
		require.NoError(t, tree.Insert(b))
	}

	for _, b := range bodies {
		got := tree.Force(b, 0)
		want := directSum(tree.G, b, bodies)

		// Bound the difference by the total interaction magnitude, which is
		// robust against cancellation in the net force.
		var scale float64
		for _, other := range bodies {
			if other.Position != b.Position {
				scale += PairwiseForce(tree.G, b, other.Position, other.Mass).Magnitude()
			}
		}
		assert.LessOrEqual(t, got.Sub(want).Magnitude(), 1e-10*scale)
	}
}

func TestForceSymmetry(t *testing.T) {
	boundary := Square(10)
	a := Body{Position: gmath.Vector2{X: -2, Y: 1}, Mass: 3}
	b := Body{Position: gmath.Vector2{X: 4, Y: -2}, Mass: 5}

	tree := New(boundary)
	tree.G = 1.0
	require.NoError(t, tree.Insert(a))
	require.NoError(t, tree.Insert(b))

	fa := tree.Force(a, 0.5)
	fb := tree.Force(b, 0.5)

	assert.True(t, scalar.EqualWithinRel(fa.Magnitude(), fb.Magnitude(), 1e-12))
	assert.True(t, scalar.EqualWithinAbsOrRel(fa.X, -fb.X, 1e-15, 1e-12))
	assert.True(t, scalar.EqualWithinAbsOrRel(fa.Y, -fb.Y, 1e-15, 1e-12))
}

func TestSelfForceIsZero(t *testing.T) {
	tree := New(Square(10))
	b := Body{Position: gmath.Vector2{X: 1, Y: 2}, Mass: 7}
	require.NoError(t, tree.Insert(b))

	assert.Equal(t, gmath.Vector2{}, tree.Force(b, 0.5))
}

func TestCoincidentBodiesAreDropped(t *testing.T) {
	tree := New(Square(10))
	b := Body{Position: gmath.Vector2{X: 1, Y: 1}, Mass: 5}

	for i := 0; i < 100; i++ {
		require.NoError(t, tree.Insert(b))
	}
	assert.Equal(t, 5.0, tree.TotalMass(), "coincident inserts are no-ops")

	// A coincident body arriving below an internal node is dropped there too
	// and must not count toward any ancestor's aggregates.
	other := Body{Position: gmath.Vector2{X: -3, Y: -3}, Mass: 7}
	require.NoError(t, tree.Insert(other))
	require.NoError(t, tree.Insert(Body{Position: gmath.Vector2{X: 1, Y: 1}, Mass: 9}))
	assert.True(t, scalar.EqualWithinRel(tree.TotalMass(), 12.0, 1e-12))
}

func TestInsertOutOfBounds(t *testing.T) {
	tree := New(Square(10))
	err := tree.Insert(Body{Position: gmath.Vector2{X: 11, Y: 0}, Mass: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, 0.0, tree.TotalMass())
}

func TestEarthMoonForceMagnitude(t *testing.T) {
	const (
		earthMass  = 5.97e24
		moonMass   = 7.35e22
		separation = 3.844e8
	)

	tree := New(Square(1e9))
	earth := Body{Position: gmath.Vector2{X: 0, Y: 0}, Mass: earthMass}
	moon := Body{Position: gmath.Vector2{X: separation, Y: 0}, Mass: moonMass}
	require.NoError(t, tree.Insert(earth))
	require.NoError(t, tree.Insert(moon))

	want := DefaultG * earthMass * moonMass / (separation * separation)

	fe := tree.Force(earth, 0.5)
	fm := tree.Force(moon, 0.5)

	assert.True(t, scalar.EqualWithinRel(fe.Magnitude(), want, 1e-12))
	assert.True(t, scalar.EqualWithinRel(fm.Magnitude(), want, 1e-12))
	assert.Greater(t, fe.X, 0.0, "earth is pulled toward the moon")
	assert.Less(t, fm.X, 0.0, "moon is pulled toward the earth")

	// With only two bodies the result is the direct leaf computation and
	// therefore independent of theta.
	assert.Equal(t, fe, tree.Force(earth, 0.0))
	assert.Equal(t, fe, tree.Force(earth, 1.0))
}

func TestOpeningAngleApproximation(t *testing.T) {
	boundary := Square(100)
	tree := New(boundary)
	tree.G = 1.0

	// A tight cluster far from the query point.
	rng := rand.New(rand.NewSource(4))
	var cluster []Body
	for i := 0; i < 20; i++ {
		b := Body{
			Position: gmath.Vector2{X: 88 + rng.Float64()*4, Y: 88 + rng.Float64()*4},
			Mass:     1 + rng.Float64(),
		}
		cluster = append(cluster, b)
		require.NoError(t, tree.Insert(b))
	}

	query := Body{Position: gmath.Vector2{X: -90, Y: -90}, Mass: 2}

	// Large theta gates at the root: the whole cluster collapses to a point
	// mass at its center of mass.
	approx := tree.Force(query, 1.0)
	want := PairwiseForce(tree.G, query, tree.CenterOfMass(), tree.TotalMass())
	assert.True(t, scalar.EqualWithinRel(approx.Magnitude(), want.Magnitude(), 1e-12))

	// The approximation stays close to the exact sum for a distant tight
	// cluster, and tiny theta recovers it.
	exact := directSum(tree.G, query, cluster)
	assert.InEpsilon(t, exact.Magnitude(), approx.Magnitude(), 0.01)
	nearExact := tree.Force(query, 1e-6)
	assert.LessOrEqual(t, nearExact.Sub(exact).Magnitude(), 1e-10*exact.Magnitude())
}

func TestTreeBoundaryIsFixed(t *testing.T) {
	boundary := Square(123)
	tree := New(boundary)
	require.NoError(t, tree.Insert(Body{Position: gmath.Vector2{X: 5, Y: 5}, Mass: 1}))
	assert.Equal(t, boundary, tree.Boundary())
}
