package models

// Easing curve names understood by the renderer.
const (
	EasingCubicInOut = "cubic-in-out"
	EasingLinear     = "linear"
)

// Highlight types carried on timeline entries.
const (
	HighlightTypeBox         = "highlight"
	HighlightTypePlaceholder = "placeholder" // step needs review, box is synthetic
)

// Keyframe is a timestamped viewport-transform sample. The renderer
// interpolates between consecutive keyframes at playback time.
type Keyframe struct {
	TimeSeconds float64 `json:"time_seconds"`
	Zoom        float64 `json:"zoom"`
	PanX        float64 `json:"pan_x"`
	PanY        float64 `json:"pan_y"`
	Opacity     float64 `json:"opacity"`
}

// TimelineEntry is the animation schedule for one narration step.
// Entries never overlap: entry[i].EndTime <= entry[i+1].StartTime, and
// StartTime is strictly increasing with entry[0].StartTime == 0.
type TimelineEntry struct {
	StepIndex     int        `json:"step_index"`
	StartTime     float64    `json:"start_time"`
	EndTime       float64    `json:"end_time"`
	Keyframes     []Keyframe `json:"keyframes"`
	HighlightType string     `json:"highlight_type"`
	Easing        string     `json:"easing"`
	Caption       string     `json:"caption,omitempty"` // narrative text, passed through untouched
}
