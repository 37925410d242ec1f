package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorArithmetic(t *testing.T) {
	a := Vector2{X: 1, Y: 2}
	b := Vector2{X: 3, Y: -4}

	assert.Equal(t, Vector2{X: 4, Y: -2}, a.Add(b))
	assert.Equal(t, Vector2{X: -2, Y: 6}, a.Sub(b))
	assert.Equal(t, Vector2{X: 2, Y: 4}, a.Scale(2))
	assert.Equal(t, -5.0, a.Dot(b))
	assert.Equal(t, -10.0, a.Cross(b))
}

func TestMagnitudeAndDistance(t *testing.T) {
	v := Vector2{X: 3, Y: 4}
	assert.Equal(t, 5.0, v.Magnitude())
	assert.Equal(t, 5.0, Vector2{}.Distance(v))

	unit := v.Normalize()
	assert.InDelta(t, 1.0, unit.Magnitude(), 1e-15)
	assert.InDelta(t, 0.6, unit.X, 1e-15)
	assert.InDelta(t, 0.8, unit.Y, 1e-15)
}

func TestZeroVector(t *testing.T) {
	var zero Vector2
	assert.True(t, zero.IsZero())
	assert.False(t, Vector2{X: 1}.IsZero())

	// Normalizing the zero vector must not divide by zero.
	assert.Equal(t, zero, zero.Normalize())
}
