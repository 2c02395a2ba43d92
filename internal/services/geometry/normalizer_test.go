package geometry

import (
	"math"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/common"
	"github.com/ternarybob/scaena/internal/models"
)

func testNormalizer() *Normalizer {
	cfg := common.NewDefaultConfig()
	return NewNormalizer(&cfg.Pipeline, arbor.NewLogger())
}

// letterPage is US Letter in points.
var letterPage = models.PageDimensions{Width: 612, Height: 792}

func rect(x0, y0, x1, y1 float64, unit models.LengthUnit) *models.BoundingRegion {
	return &models.BoundingRegion{
		PageNumber: 1,
		Unit:       unit,
		Polygon: []models.Point{
			{X: x0, Y: y0},
			{X: x1, Y: y0},
			{X: x1, Y: y1},
			{X: x0, Y: y1},
		},
	}
}

func TestNormalizeUnitDetection(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name   string
		region *models.BoundingRegion
		wantX  float64
		wantY  float64
		wantW  float64
		wantH  float64
	}{
		{
			// All coordinates in [0,1] are page fractions.
			name:   "normalized fractions scale by page size",
			region: rect(0.1, 0.1, 0.5, 0.2, ""),
			wantX:  61.2, wantY: 79.2, wantW: 244.8, wantH: 79.2,
		},
		{
			// Anything above 1.0 is inches.
			name:   "inch coordinates scale by 72",
			region: rect(1.0, 2.0, 4.0, 3.0, ""),
			wantX:  72, wantY: 144, wantW: 216, wantH: 72,
		},
		{
			// A declared unit always wins over detection.
			name:   "declared inches below 1.0 still treated as inches",
			region: rect(0.25, 0.25, 0.75, 0.5, models.UnitInches),
			wantX:  18, wantY: 18, wantW: 36, wantH: 18,
		},
		{
			name:   "declared points pass through",
			region: rect(100, 200, 300, 250, models.UnitPoints),
			wantX:  100, wantY: 200, wantW: 200, wantH: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := n.Normalize(tt.region, letterPage)
			if box == nil {
				t.Fatal("Normalize() returned nil for well-formed region")
			}
			approxBox(t, *box, tt.wantX, tt.wantY, tt.wantW, tt.wantH)
		})
	}
}

func TestNormalizeFullPageRoundTrip(t *testing.T) {
	n := testNormalizer()

	// A full-page region in any unit must land on the same pixel box.
	normalized := n.Normalize(rect(0, 0, 1, 1, models.UnitNormalized), letterPage)
	inches := n.Normalize(rect(0, 0, 8.5, 11, models.UnitInches), letterPage)
	points := n.Normalize(rect(0, 0, 612, 792, models.UnitPoints), letterPage)

	if normalized == nil || inches == nil || points == nil {
		t.Fatal("Normalize() returned nil for a full-page region")
	}

	approxBox(t, *inches, normalized.X, normalized.Y, normalized.Width, normalized.Height)
	approxBox(t, *points, normalized.X, normalized.Y, normalized.Width, normalized.Height)
}

func TestNormalizeClampTruncates(t *testing.T) {
	n := testNormalizer()

	// Region extends past the right viewport edge; the overhang is cut off,
	// the box is not translated inward.
	box := n.Normalize(rect(1200, 100, 1400, 200, models.UnitPoints), models.PageDimensions{Width: 1500, Height: 1000})
	if box == nil {
		t.Fatal("Normalize() returned nil")
	}
	if box.X != 1200 {
		t.Errorf("X = %v, want 1200 (box must not shift inward)", box.X)
	}
	if box.X+box.Width != n.Viewport().Width {
		t.Errorf("right edge = %v, want %v", box.X+box.Width, n.Viewport().Width)
	}
}

func TestNormalizeFullyOutsideViewport(t *testing.T) {
	n := testNormalizer()

	box := n.Normalize(rect(2000, 2000, 2100, 2100, models.UnitPoints), models.PageDimensions{Width: 2500, Height: 2500})
	if box == nil {
		t.Fatal("Normalize() returned nil")
	}
	if box.Area() != 0 {
		t.Errorf("Area() = %v, want 0 for box fully outside viewport", box.Area())
	}
}

func TestNormalizeMalformedRegions(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name   string
		region *models.BoundingRegion
	}{
		{"nil region", nil},
		{"empty polygon", &models.BoundingRegion{PageNumber: 1}},
		{
			"three points",
			&models.BoundingRegion{Polygon: []models.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}},
		},
		{
			"NaN coordinate",
			&models.BoundingRegion{Polygon: []models.Point{
				{X: math.NaN(), Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
			}},
		},
		{
			"infinite coordinate",
			&models.BoundingRegion{Polygon: []models.Point{
				{X: 0, Y: math.Inf(1)}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if box := n.Normalize(tt.region, letterPage); box != nil {
				t.Errorf("Normalize() = %+v, want nil for malformed region", box)
			}
		})
	}
}

func TestFlipRegionY(t *testing.T) {
	// One inch tall region at the bottom of a letter page, bottom-left origin.
	region := rect(1, 0, 3, 1, models.UnitInches)
	region.Origin = models.OriginBottomLeft

	flipped := FlipRegionY(region, letterPage)
	if flipped.Origin != models.OriginTopLeft {
		t.Errorf("Origin = %q, want top-left", flipped.Origin)
	}

	// Bottom of the page (y=0 bottom-left) becomes y=11in top-left.
	maxY := 0.0
	for _, p := range flipped.Polygon {
		maxY = math.Max(maxY, p.Y)
	}
	if math.Abs(maxY-11) > 1e-9 {
		t.Errorf("max Y after flip = %v, want 11", maxY)
	}

	// The source region is never mutated.
	if region.Polygon[0].Y != 0 {
		t.Error("FlipRegionY mutated its input")
	}
}

func TestBoundsCacheMemoizes(t *testing.T) {
	n := testNormalizer()
	cache := NewBoundsCache()

	elem := &models.Element{
		ID:      "elem_test",
		Kind:    models.KindParagraph,
		Text:    "hello",
		Regions: []models.BoundingRegion{*rect(0.1, 0.1, 0.5, 0.2, "")},
	}

	first, ok := cache.ElementBox(n, elem, letterPage, models.OriginTopLeft)
	if !ok {
		t.Fatal("ElementBox() missed for valid element")
	}

	// Mutate the underlying region; the cached box must win.
	elem.Regions[0].Polygon[0].X = 0.9
	second, ok := cache.ElementBox(n, elem, letterPage, models.OriginTopLeft)
	if !ok {
		t.Fatal("ElementBox() missed on second access")
	}
	if first != second {
		t.Errorf("cache returned different boxes: %+v then %+v", first, second)
	}
}

func TestBoundsCacheFlipsBottomLeftOrigin(t *testing.T) {
	n := testNormalizer()
	cache := NewBoundsCache()

	// One inch tall, one inch above the bottom margin, measured from the
	// bottom-left corner of a letter page.
	elem := &models.Element{
		ID:      "elem_flip",
		Kind:    models.KindParagraph,
		Regions: []models.BoundingRegion{*rect(1, 9, 3, 10, models.UnitInches)},
	}

	box, ok := cache.ElementBox(n, elem, letterPage, models.OriginBottomLeft)
	if !ok {
		t.Fatal("ElementBox() missed for valid element")
	}
	approxBox(t, box, 72, 72, 144, 72)
}

func TestNormalizeFullPageExact(t *testing.T) {
	// A viewport that fits a whole letter page at scale 1.0, so the full-page
	// polygon maps to exactly 612x792 regardless of input unit.
	cfg := common.NewDefaultConfig()
	cfg.Pipeline.ViewportWidth = 1280
	cfg.Pipeline.ViewportHeight = 800
	n := NewNormalizer(&cfg.Pipeline, arbor.NewLogger())

	regions := []*models.BoundingRegion{
		rect(0, 0, 1, 1, ""),
		rect(0, 0, 8.5, 11, models.UnitInches),
		rect(0, 0, 612, 792, models.UnitPoints),
	}
	for _, region := range regions {
		box := n.Normalize(region, letterPage)
		if box == nil {
			t.Fatalf("Normalize(%s full page) returned nil", region.Unit)
		}
		approxBox(t, *box, 0, 0, 612, 792)
	}
}

func approxBox(t *testing.T, got models.CanonicalBox, x, y, w, h float64) {
	t.Helper()
	const eps = 1e-6
	if math.Abs(got.X-x) > eps || math.Abs(got.Y-y) > eps ||
		math.Abs(got.Width-w) > eps || math.Abs(got.Height-h) > eps {
		t.Errorf("box = {%v %v %v %v}, want {%v %v %v %v}",
			got.X, got.Y, got.Width, got.Height, x, y, w, h)
	}
}
