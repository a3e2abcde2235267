package geometry

import "math"

// Letterbox describes how an image is fitted inside a container with
// object-contain semantics: uniformly scaled and centred.
type Letterbox struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// FitContain computes the letterbox placing an image of natural size img
// inside container.
func FitContain(container, img Viewport) Letterbox {
	img = img.OrDefault()
	if !container.Valid() {
		return Letterbox{Scale: 1}
	}
	scale := math.Min(container.W/img.W, container.H/img.H)
	return Letterbox{
		Scale:   scale,
		OffsetX: (container.W - img.W*scale) / 2,
		OffsetY: (container.H - img.H*scale) / 2,
	}
}

// ScreenToUnit maps a client point inside the container to unit plan space,
// clamped to [0,1] on both axes.
func ScreenToUnit(p Point, container, img Viewport) Point {
	img = img.OrDefault()
	lb := FitContain(container, img)
	u := Unproject(Point{X: (p.X - lb.OffsetX) / lb.Scale, Y: (p.Y - lb.OffsetY) / lb.Scale}, img)
	return Point{X: clamp01(u.X), Y: clamp01(u.Y)}
}

// RectFromDrag normalizes a drag gesture between two unit points into a rect
// whose origin is the top-left corner.
func RectFromDrag(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
