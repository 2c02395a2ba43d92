package geometry

import (
	"math"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/common"
	"github.com/ternarybob/scaena/internal/models"
)

// PointsPerInch converts inches to PostScript points.
const PointsPerInch = 72.0

// Normalizer converts raw bounding regions of unknown unit into canonical
// pixel-space boxes anchored to a fixed viewport. It is origin-agnostic: it
// always treats incoming coordinates as top-left-origin. The integration layer
// flips Y first when the upstream service declared a bottom-left origin.
type Normalizer struct {
	viewport models.Viewport
	scale    float64
	logger   arbor.ILogger
}

// NewNormalizer creates a normalizer for the configured viewport and scale.
func NewNormalizer(cfg *common.PipelineConfig, logger arbor.ILogger) *Normalizer {
	return &Normalizer{
		viewport: models.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		scale:    cfg.Scale,
		logger:   logger,
	}
}

// Viewport returns the pixel surface boxes are normalized into.
func (n *Normalizer) Viewport() models.Viewport {
	return n.viewport
}

// Normalize converts one raw region into a canonical pixel box.
//
// A malformed region (fewer than 4 points, or non-finite coordinates) yields
// nil rather than an error: noisy analysis output is expected and must not
// abort the run. Callers skip the element.
func (n *Normalizer) Normalize(region *models.BoundingRegion, page models.PageDimensions) *models.CanonicalBox {
	if !region.Valid() {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range region.Polygon {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	unit := resolveUnit(region, maxX, maxY)

	// Convert bounds to points.
	var x, y, w, h float64
	switch unit {
	case models.UnitNormalized:
		x = minX * page.Width
		y = minY * page.Height
		w = (maxX - minX) * page.Width
		h = (maxY - minY) * page.Height
	case models.UnitInches:
		x = minX * PointsPerInch
		y = minY * PointsPerInch
		w = (maxX - minX) * PointsPerInch
		h = (maxY - minY) * PointsPerInch
	case models.UnitPoints:
		x, y = minX, minY
		w, h = maxX-minX, maxY-minY
	}

	// Points to pixels.
	box := models.CanonicalBox{
		X:      x * n.scale,
		Y:      y * n.scale,
		Width:  w * n.scale,
		Height: h * n.scale,
	}

	clamped := n.clamp(box)
	return &clamped
}

// resolveUnit honors a declared unit and falls back to detection: coordinates
// that all fit in [0,1] are normalized page fractions, anything larger is
// inches. The upstream service never declares points, but a declared unit
// always wins over the heuristic.
func resolveUnit(region *models.BoundingRegion, maxX, maxY float64) models.LengthUnit {
	switch region.Unit {
	case models.UnitNormalized, models.UnitInches, models.UnitPoints:
		return region.Unit
	}
	if maxX <= 1.0 && maxY <= 1.0 {
		return models.UnitNormalized
	}
	return models.UnitInches
}

// clamp truncates the box to the viewport. A region partially outside the
// viewport loses the overhanging portion; it is never translated inward.
func (n *Normalizer) clamp(box models.CanonicalBox) models.CanonicalBox {
	x0 := math.Max(box.X, 0)
	y0 := math.Max(box.Y, 0)
	x1 := math.Min(box.X+box.Width, n.viewport.Width)
	y1 := math.Min(box.Y+box.Height, n.viewport.Height)

	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}

	return models.CanonicalBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// FlipRegionY mirrors a region's polygon vertically in the region's own unit,
// converting bottom-left-origin coordinates to the canonical top-left origin.
// The caller applies this before Normalize when the upstream service was
// configured as bottom-left.
func FlipRegionY(region *models.BoundingRegion, page models.PageDimensions) *models.BoundingRegion {
	if region == nil {
		return nil
	}

	pageHeight := page.Height / PointsPerInch // inches
	flipped := *region
	flipped.Polygon = make([]models.Point, len(region.Polygon))
	for i, p := range region.Polygon {
		switch region.Unit {
		case models.UnitInches:
			flipped.Polygon[i] = models.Point{X: p.X, Y: pageHeight - p.Y}
		case models.UnitPoints:
			flipped.Polygon[i] = models.Point{X: p.X, Y: page.Height - p.Y}
		default:
			// Normalized, or undetected: detection treats <=1.0 as normalized,
			// so mirror within the unit square when the polygon fits it and
			// fall back to inches otherwise.
			if fitsUnitSquare(region.Polygon) {
				flipped.Polygon[i] = models.Point{X: p.X, Y: 1 - p.Y}
			} else {
				flipped.Polygon[i] = models.Point{X: p.X, Y: pageHeight - p.Y}
			}
		}
	}
	flipped.Origin = models.OriginTopLeft
	return &flipped
}

func fitsUnitSquare(polygon []models.Point) bool {
	for _, p := range polygon {
		if p.X > 1.0 || p.Y > 1.0 {
			return false
		}
	}
	return true
}
