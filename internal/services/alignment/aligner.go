package alignment

import (
	"math"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/common"
	"github.com/ternarybob/scaena/internal/models"
	"github.com/ternarybob/scaena/internal/services/geometry"
)

// Placeholder geometry for steps that fail alignment. Boxes stack just past
// the right viewport edge, offset by step index, so downstream code always has
// a deterministic box to animate to.
const (
	placeholderMargin = 24.0
	placeholderStack  = 48.0
	placeholderWidth  = 200.0
	placeholderHeight = 40.0
)

// rowToleranceRatio bounds the vertical window, relative to the best match's
// height, within which neighbor fragments count as the same approximate row.
const rowToleranceRatio = 0.8

// columnWindowRatio bounds the horizontal window, relative to viewport width,
// within which neighbor fragments are considered nearby.
const columnWindowRatio = 0.25

// Aligner resolves each narration step to the extracted element(s) it refers
// to. Matching is sequential and greedy with a no-reuse constraint: an element
// consumed by an earlier step never lights up again for a later one. Greedy
// assignment is a known local-optimum compromise kept for determinism.
type Aligner struct {
	threshold       float64
	mergeSimilarity float64
	mergeCap        int
	viewport        models.Viewport
	logger          arbor.ILogger
}

// NewAligner creates an aligner with the configured thresholds.
func NewAligner(cfg *common.PipelineConfig, logger arbor.ILogger) *Aligner {
	return &Aligner{
		threshold:       cfg.SimilarityThreshold,
		mergeSimilarity: cfg.MergeSimilarity,
		mergeCap:        cfg.MergeCap,
		viewport:        models.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		logger:          logger,
	}
}

// candidate is one scored unconsumed element for the current step.
type candidate struct {
	elem    *models.Element
	box     models.CanonicalBox
	score   float64
	exact   bool
	keyword bool
	order   int // original element position, final tie-break
}

// Align produces exactly one AlignedHighlight per step, in step order. Steps
// with no acceptable candidate are flagged NeedsReview and given a placeholder
// box; they are never omitted, since omission would silently break step order.
func (a *Aligner) Align(steps []models.NarrationStep, elements []*models.Element, bounds geometry.BoundsCache) []models.AlignedHighlight {
	consumed := make(map[string]bool)
	out := make([]models.AlignedHighlight, 0, len(steps))

	for i, step := range steps {
		highlight := a.alignStep(i, step, elements, bounds, consumed)
		out = append(out, highlight)
	}

	return out
}

func (a *Aligner) alignStep(index int, step models.NarrationStep, elements []*models.Element, bounds geometry.BoundsCache, consumed map[string]bool) models.AlignedHighlight {
	candidates := a.scoreCandidates(step.HighlightText, elements, bounds, consumed)

	best := pickBest(candidates)
	if best == nil || !a.acceptable(best) {
		a.logger.Debug().
			Int("step", step.StepNumber).
			Str("highlight_text", step.HighlightText).
			Msg("No element cleared the alignment threshold, placeholder substituted")
		return models.AlignedHighlight{
			Step:            step.StepNumber,
			Box:             a.placeholderBox(index),
			MatchedElements: []*models.Element{},
			NeedsReview:     true,
		}
	}

	merged := a.mergeNeighbors(best, candidates)
	box := merged[0].box
	elems := make([]*models.Element, 0, len(merged))
	for _, c := range merged {
		box = box.Union(c.box)
		elems = append(elems, c.elem)
		consumed[c.elem.ID] = true
	}

	return models.AlignedHighlight{
		Step:            step.StepNumber,
		Box:             box,
		MatchedElements: elems,
		NeedsReview:     false,
	}
}

func (a *Aligner) scoreCandidates(highlightText string, elements []*models.Element, bounds geometry.BoundsCache, consumed map[string]bool) []candidate {
	var out []candidate
	for i, elem := range elements {
		if consumed[elem.ID] || elem.Text == "" {
			continue
		}
		box, ok := bounds[elem.ID]
		if !ok {
			continue
		}
		out = append(out, candidate{
			elem:    elem,
			box:     box,
			score:   Similarity(highlightText, elem.Text),
			exact:   IsExactMatch(highlightText, elem.Text),
			keyword: HasKeywordOverlap(highlightText, elem.Text),
			order:   i,
		})
	}
	return out
}

// pickBest ranks candidates by (exact, keyword overlap, similarity) descending
// with the original element order as the deterministic final tie-break.
func pickBest(candidates []candidate) *candidate {
	if len(candidates) == 0 {
		return nil
	}
	sorted := make([]candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].exact != sorted[j].exact {
			return sorted[i].exact
		}
		if sorted[i].keyword != sorted[j].keyword {
			return sorted[i].keyword
		}
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		return sorted[i].order < sorted[j].order
	})
	return &sorted[0]
}

// acceptable applies the acceptance gate: non-empty text, non-zero area, and
// either the similarity threshold or an exact match.
func (a *Aligner) acceptable(c *candidate) bool {
	if c.elem.Text == "" || c.box.Area() <= 0 {
		return false
	}
	return c.exact || c.score > a.threshold
}

// mergeNeighbors gathers other candidates in a small spatial window of the
// best match (same approximate row, nearby column) that also clear the merge
// bar or match exactly. A very large qualifying cluster usually signals an
// overly generic keyword rather than a genuine multi-fragment phrase, so it
// collapses back to the single best match.
func (a *Aligner) mergeNeighbors(best *candidate, candidates []candidate) []candidate {
	rowTolerance := best.box.Height * rowToleranceRatio
	columnWindow := a.viewport.Width * columnWindowRatio

	merged := []candidate{*best}
	for _, c := range candidates {
		if c.elem.ID == best.elem.ID {
			continue
		}
		if !c.exact && c.score <= a.mergeSimilarity {
			continue
		}
		if math.Abs(c.box.CenterY()-best.box.CenterY()) > rowTolerance {
			continue
		}
		if horizontalGap(best.box, c.box) > columnWindow {
			continue
		}
		merged = append(merged, c)
	}

	if len(merged) > a.mergeCap {
		return []candidate{*best}
	}
	return merged
}

// horizontalGap is the distance between the closest vertical edges of two
// boxes, zero when they overlap horizontally.
func horizontalGap(a, b models.CanonicalBox) float64 {
	if a.X+a.Width < b.X {
		return b.X - (a.X + a.Width)
	}
	if b.X+b.Width < a.X {
		return a.X - (b.X + b.Width)
	}
	return 0
}

// placeholderBox builds the deterministic off-document box for an unresolved
// step: stacked at a fixed margin past the right viewport edge, offset by
// step index.
func (a *Aligner) placeholderBox(stepIndex int) models.CanonicalBox {
	return models.CanonicalBox{
		X:      a.viewport.Width + placeholderMargin,
		Y:      float64(stepIndex) * placeholderStack,
		Width:  placeholderWidth,
		Height: placeholderHeight,
	}
}
