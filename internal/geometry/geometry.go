// Package geometry maps normalized floor-plan coordinates to pixel space and
// sizes overlay labels.
//
// Every coordinate stored for a zone is a fraction of the plan image's width
// or height, so the same zone renders correctly at any plan resolution.
package geometry

import "math"

// Default viewport used when the plan image's natural size is unknown.
const (
	DefaultWidth  = 1000.0
	DefaultHeight = 750.0
)

// Point is a 2D coordinate. In unit space both components are in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Viewport is a rendered pixel size.
type Viewport struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Valid reports whether both sides are positive and finite.
func (v Viewport) Valid() bool {
	return v.W > 0 && v.H > 0 && !math.IsInf(v.W, 0) && !math.IsInf(v.H, 0)
}

// OrDefault substitutes the default 1000x750 viewport for a degenerate one.
func (v Viewport) OrDefault() Viewport {
	if !v.Valid() {
		return Viewport{W: DefaultWidth, H: DefaultHeight}
	}
	return v
}

// Shape is the kind of pixel geometry produced by Project.
type Shape string

const (
	ShapeRect    Shape = "rect"
	ShapePolygon Shape = "polygon"
)

// Normalized is a zone's stored geometry. Rect wins when both are present.
type Normalized struct {
	Rect   *Rect
	Points []Point
}

// Pixel is projected geometry ready for an SVG-like overlay.
type Pixel struct {
	Shape  Shape   `json:"shape"`
	Rect   *Rect   `json:"rect,omitempty"`
	Points []Point `json:"points,omitempty"`
	Center Point   `json:"center"`
	// Bounds is the rect itself or the polygon's bounding box.
	Bounds Rect `json:"bounds"`
}

// ProjectRect scales a unit rectangle into vp.
func ProjectRect(r Rect, vp Viewport) Rect {
	return Rect{
		X:      r.X * vp.W,
		Y:      r.Y * vp.H,
		Width:  r.Width * vp.W,
		Height: r.Height * vp.H,
	}
}

// ProjectPoints scales each unit point into vp, preserving order.
func ProjectPoints(points []Point, vp Viewport) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{X: p.X * vp.W, Y: p.Y * vp.H}
	}
	return out
}

// Project converts stored geometry into pixel geometry. It returns false when
// the zone has no usable geometry; callers skip the overlay but keep the zone
// in list views.
func Project(g Normalized, vp Viewport) (Pixel, bool) {
	if g.Rect != nil {
		px := ProjectRect(*g.Rect, vp)
		return Pixel{
			Shape:  ShapeRect,
			Rect:   &px,
			Center: px.Center(),
			Bounds: px,
		}, true
	}
	if len(g.Points) == 0 {
		return Pixel{}, false
	}

	pts := ProjectPoints(g.Points, vp)
	bounds := BoundingBox(pts)
	return Pixel{
		Shape:  ShapePolygon,
		Points: pts,
		Center: bounds.Center(),
		Bounds: bounds,
	}, true
}

// BoundingBox returns the smallest rect containing every point.
func BoundingBox(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Unproject maps a pixel point in vp back to unit space.
func Unproject(p Point, vp Viewport) Point {
	vp = vp.OrDefault()
	return Point{X: p.X / vp.W, Y: p.Y / vp.H}
}
