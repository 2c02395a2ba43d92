package models

import "math"

// LengthUnit identifies the physical unit a bounding region was expressed in.
type LengthUnit string

const (
	// UnitNormalized means coordinates are fractions of the page in [0,1]
	UnitNormalized LengthUnit = "normalized"
	// UnitInches means coordinates are inches from the page origin
	UnitInches LengthUnit = "inches"
	// UnitPoints means coordinates are PostScript points (1/72 inch)
	UnitPoints LengthUnit = "points"
)

// OriginConvention identifies which page corner the analysis service measured from.
type OriginConvention string

const (
	OriginTopLeft    OriginConvention = "top-left"
	OriginBottomLeft OriginConvention = "bottom-left"
)

// Point is a single 2D polygon vertex.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingRegion is a raw polygon as emitted by the document-analysis service.
// It is immutable once produced; downstream code only ever reads it.
type BoundingRegion struct {
	PageNumber int              `json:"page_number"`
	Polygon    []Point          `json:"polygon"`
	Unit       LengthUnit       `json:"unit,omitempty"`
	Origin     OriginConvention `json:"origin,omitempty"`
}

// Valid reports whether the region has enough well-formed points to derive bounds.
// Analysis output is noisy, so a short or non-finite polygon is expected input,
// not an error condition.
func (r *BoundingRegion) Valid() bool {
	if r == nil || len(r.Polygon) < 4 {
		return false
	}
	for _, p := range r.Polygon {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// PageDimensions describes one analyzed page in points.
type PageDimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport is the pixel surface the timeline is built against.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CanonicalBox is an axis-aligned rectangle in viewport pixel space.
// All geometry downstream of the coordinate normalizer uses only this type.
type CanonicalBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal center of the box.
func (b CanonicalBox) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical center of the box.
func (b CanonicalBox) CenterY() float64 { return b.Y + b.Height/2 }

// Area returns the box area in square pixels.
func (b CanonicalBox) Area() float64 { return b.Width * b.Height }

// Union returns the smallest box covering both b and other.
func (b CanonicalBox) Union(other CanonicalBox) CanonicalBox {
	minX := math.Min(b.X, other.X)
	minY := math.Min(b.Y, other.Y)
	maxX := math.Max(b.X+b.Width, other.X+other.Width)
	maxY := math.Max(b.Y+b.Height, other.Y+other.Height)
	return CanonicalBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// UnionBoxes folds a set of boxes into one covering box.
// Returns nil for an empty set.
func UnionBoxes(boxes []CanonicalBox) *CanonicalBox {
	if len(boxes) == 0 {
		return nil
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out = out.Union(b)
	}
	return &out
}
