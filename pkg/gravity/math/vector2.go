package math

import "math"

// Vector2 represents a 2D vector for gravitational calculations
type Vector2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns the sum of two vectors
func (v Vector2) Add(other Vector2) Vector2 {
	return Vector2{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2) Sub(other Vector2) Vector2 {
	return Vector2{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale returns the vector scaled by a scalar
func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{
		X: v.X * s,
		Y: v.Y * s,
	}
}

// Dot returns the dot product of two vectors
func (v Vector2) Dot(other Vector2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the scalar (z-component) cross product of two vectors
func (v Vector2) Cross(other Vector2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Magnitude returns the length of the vector
func (v Vector2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns a unit vector in the same direction
func (v Vector2) Normalize() Vector2 {
	mag := v.Magnitude()
	if mag == 0 {
		return v
	}
	return v.Scale(1.0 / mag)
}

// Distance returns the distance between two vectors
func (v Vector2) Distance(other Vector2) float64 {
	return v.Sub(other).Magnitude()
}

// IsZero checks if the vector is zero
func (v Vector2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
