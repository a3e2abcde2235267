package geometry

import "math"

// Label sizing heuristics. Horizontal fit grows with the per-character width
// available, vertical fit is a fraction of the region height.
const (
	horizontalFactor = 1.2
	verticalFactor   = 0.25

	MinFontSize = 6.0
	MaxFontSize = 14.0

	subLabelFactor  = 0.8
	MinSubLabelSize = 5.0
)

// FontSizes holds the primary label size and the secondary (date) label size.
type FontSizes struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
}

// LabelFontSize computes a legible font size for a label of n characters
// inside a w x h pixel region. The result is always in
// [MinFontSize, MaxFontSize].
func LabelFontSize(w, h float64, n int) float64 {
	if n < 1 {
		n = 1
	}
	horizontal := w / float64(n) * horizontalFactor
	vertical := h * verticalFactor
	return clamp(math.Min(horizontal, vertical), MinFontSize, MaxFontSize)
}

// SubLabelFontSize sizes the date line under a primary label.
func SubLabelFontSize(primary float64) float64 {
	return clamp(primary*subLabelFactor, MinSubLabelSize, MaxFontSize)
}

// LabelFontSizes sizes both label lines for a region.
func LabelFontSizes(w, h float64, n int) FontSizes {
	primary := LabelFontSize(w, h, n)
	return FontSizes{Primary: primary, Secondary: SubLabelFontSize(primary)}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
