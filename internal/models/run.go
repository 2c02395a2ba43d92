package models

import "time"

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Stage      string  `json:"stage"`
	DurationMs float64 `json:"duration_ms"`
}

// ProcessingRun is the full output of one document-processing invocation:
// the section map, aligned highlights, and the animation timeline, plus the
// needs-review list surfaced for optional manual inspection. Each run owns its
// own element/section/timeline graph; nothing is shared between runs.
type ProcessingRun struct {
	ID       string   `json:"id"` // run_{uuid}
	Viewport Viewport `json:"viewport"`

	Sections   map[string]*Section `json:"sections"`
	Highlights []AlignedHighlight  `json:"highlights"`
	Timeline   []TimelineEntry     `json:"timeline"`

	TotalDuration float64 `json:"total_duration"` // seconds, including inter-step pauses
	ElementCount  int     `json:"element_count"`
	DroppedCount  int     `json:"dropped_count"` // elements skipped for malformed regions

	// Step indices flagged needs_review, in step order.
	NeedsReviewSteps []int `json:"needs_review_steps"`

	Timings []StageTiming `json:"timings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsReviewCount returns the number of steps that failed alignment.
func (r *ProcessingRun) NeedsReviewCount() int {
	return len(r.NeedsReviewSteps)
}
