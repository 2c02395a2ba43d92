package timeline

import (
	"math"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/common"
	"github.com/ternarybob/scaena/internal/models"
)

// zoomFitMargin leaves breathing room around a highlight when deriving zoom
// from its box size.
const zoomFitMargin = 0.8

// Builder converts aligned highlights plus per-step durations into a keyframe
// animation timeline with monotonic, non-overlapping time ranges.
type Builder struct {
	viewport models.Viewport
	fps      int
	minZoom  float64
	maxZoom  float64
	pause    float64 // seconds between consecutive steps
	leadIn   float64 // seconds from enter to focus keyframe
	logger   arbor.ILogger
}

// NewBuilder creates a timeline builder from pipeline configuration.
func NewBuilder(cfg *common.PipelineConfig, logger arbor.ILogger) *Builder {
	return &Builder{
		viewport: models.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		fps:      cfg.FPS,
		minZoom:  cfg.MinZoom,
		maxZoom:  cfg.MaxZoom,
		pause:    cfg.InterStepPause,
		leadIn:   cfg.FocusLeadIn,
		logger:   logger,
	}
}

// Build produces one timeline entry per highlight, in step order.
//
// startTime[i] = sum(duration[0..i-1]) + i*pause, endTime[i] = start + duration.
// Keyframe times snap to the frame grid so the renderer lands on whole frames;
// the snap never reorders entries because the inter-step pause exceeds a frame.
func (b *Builder) Build(highlights []models.AlignedHighlight, steps []models.NarrationStep) []models.TimelineEntry {
	entries := make([]models.TimelineEntry, 0, len(highlights))

	elapsed := 0.0
	for i, h := range highlights {
		var step models.NarrationStep
		if i < len(steps) {
			step = steps[i]
		}

		duration := step.Duration
		if duration <= 0 {
			duration = 1.0 / float64(b.fps) // degenerate input still occupies one frame
		}

		start := elapsed + float64(i)*b.pause
		end := start + duration
		elapsed += duration

		easing := step.Easing
		if _, known := curves[easing]; !known {
			easing = models.EasingCubicInOut
		}

		highlightType := models.HighlightTypeBox
		if h.NeedsReview {
			highlightType = models.HighlightTypePlaceholder
		}

		entries = append(entries, models.TimelineEntry{
			StepIndex:     i,
			StartTime:     b.snap(start),
			EndTime:       b.snap(end),
			Keyframes:     b.keyframes(start, end, h.Box, step.ZoomLevel),
			HighlightType: highlightType,
			Easing:        easing,
			Caption:       step.Narrative,
		})
	}

	return entries
}

// keyframes emits the fixed four-keyframe template: enter, focus, hold, exit.
func (b *Builder) keyframes(start, end float64, box models.CanonicalBox, zoomOverride float64) []models.Keyframe {
	zoom := b.zoomFor(box, zoomOverride)
	panX, panY := b.centerOn(box, zoom)

	duration := end - start
	leadIn := b.leadIn
	if duration < 2*leadIn {
		// Short steps compress the ramps so focus never crosses hold.
		leadIn = duration / 3
	}

	return []models.Keyframe{
		{TimeSeconds: b.snap(start), Zoom: 1, PanX: 0, PanY: 0, Opacity: 0},
		{TimeSeconds: b.snap(start + leadIn), Zoom: zoom, PanX: panX, PanY: panY, Opacity: 1},
		{TimeSeconds: b.snap(end - leadIn), Zoom: zoom, PanX: panX, PanY: panY, Opacity: 1},
		{TimeSeconds: b.snap(end), Zoom: 1, PanX: 0, PanY: 0, Opacity: 0},
	}
}

// zoomFor derives the zoom level that fits the box comfortably in the
// viewport, clamped to the configured range so tiny or near-full-page boxes
// never produce degenerate transforms.
func (b *Builder) zoomFor(box models.CanonicalBox, override float64) float64 {
	zoom := override
	if zoom <= 0 {
		if box.Width <= 0 || box.Height <= 0 {
			zoom = b.minZoom
		} else {
			zoom = math.Min(b.viewport.Width/box.Width, b.viewport.Height/box.Height) * zoomFitMargin
		}
	}
	return math.Min(math.Max(zoom, b.minZoom), b.maxZoom)
}

// centerOn computes the pan that places the box center at the viewport center
// at the given zoom. Pan is applied inside the scaled coordinate space, so the
// offset scales with zoom.
func (b *Builder) centerOn(box models.CanonicalBox, zoom float64) (panX, panY float64) {
	panX = (b.viewport.Width/2 - box.CenterX()) * zoom
	panY = (b.viewport.Height/2 - box.CenterY()) * zoom
	return panX, panY
}

// snap rounds a time to the nearest frame boundary.
func (b *Builder) snap(seconds float64) float64 {
	if b.fps <= 0 {
		return seconds
	}
	return math.Round(seconds*float64(b.fps)) / float64(b.fps)
}
