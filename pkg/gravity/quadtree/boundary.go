package quadtree

// Boundary is an axis-aligned rectangular region of space. It is immutable
// once constructed; Subdivide produces fresh child boundaries.
type Boundary struct {
	XMin float64 `json:"x_min" yaml:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max"`
	YMin float64 `json:"y_min" yaml:"y_min"`
	YMax float64 `json:"y_max" yaml:"y_max"`
}

// Square returns a square boundary of the given half-extent centered at the
// origin.
func Square(extent float64) Boundary {
	return Boundary{XMin: -extent, XMax: extent, YMin: -extent, YMax: extent}
}

// Contains reports whether (x, y) lies within the boundary. Both edges are
// inclusive, so a point on a shared edge between sibling quadrants is
// contained by more than one of them; insertion resolves this with
// first-matching-quadrant order.
func (b Boundary) Contains(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// Center returns the midpoint of the boundary.
func (b Boundary) Center() (float64, float64) {
	return (b.XMin + b.XMax) / 2.0, (b.YMin + b.YMax) / 2.0
}

// Width returns the horizontal extent of the boundary.
func (b Boundary) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the vertical extent of the boundary.
func (b Boundary) Height() float64 {
	return b.YMax - b.YMin
}

// Subdivide splits the boundary at its midpoint into four quadrants in a
// fixed order: bottom-left, bottom-right, top-left, top-right. The same
// order indexes child nodes everywhere in the tree.
func (b Boundary) Subdivide() [4]Boundary {
	xc, yc := b.Center()
	return [4]Boundary{
		{XMin: b.XMin, XMax: xc, YMin: b.YMin, YMax: yc},
		{XMin: xc, XMax: b.XMax, YMin: b.YMin, YMax: yc},
		{XMin: b.XMin, XMax: xc, YMin: yc, YMax: b.YMax},
		{XMin: xc, XMax: b.XMax, YMin: yc, YMax: b.YMax},
	}
}
