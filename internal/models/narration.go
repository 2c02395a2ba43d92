package models

// NarrationStep is one ordered step of the narration script, produced by the
// narration-generation collaborator and read-only to this service. Narrative is
// opaque caption text passed through untouched; HighlightText is the string
// aligned against document elements.
type NarrationStep struct {
	StepNumber    int     `json:"step_number" validate:"gte=0"`
	Narrative     string  `json:"narrative"`
	HighlightText string  `json:"highlight_text"`
	Duration      float64 `json:"duration" validate:"gt=0"` // seconds of narration audio
	ZoomLevel     float64 `json:"zoom_level,omitempty"`     // 0 = derive from highlight box
	Easing        string  `json:"easing,omitempty"`         // overrides the default easing curve
}

// AlignedHighlight is the box a narration step should visually emphasize.
// NeedsReview is set when no candidate element cleared the acceptance
// threshold; Box is then a deterministic placeholder not derived from any
// element and MatchedElements is empty.
type AlignedHighlight struct {
	Step            int          `json:"step"`
	Box             CanonicalBox `json:"box"`
	MatchedElements []*Element   `json:"matched_elements"`
	NeedsReview     bool         `json:"needs_review"`
}
