package sections

import (
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/common"
	"github.com/ternarybob/scaena/internal/models"
	"github.com/ternarybob/scaena/internal/services/geometry"
)

// Grouper classifies normalized text-bearing elements into the configured
// section taxonomy by keyword scoring and clusters each section's members by
// vertical proximity.
type Grouper struct {
	scoreThreshold     float64
	proximityThreshold float64 // pixels
	logger             arbor.ILogger
}

// NewGrouper creates a grouper with the configured thresholds.
func NewGrouper(cfg *common.PipelineConfig, logger arbor.ILogger) *Grouper {
	return &Grouper{
		scoreThreshold:     cfg.KeywordScoreThreshold,
		proximityThreshold: cfg.ProximityThreshold,
		logger:             logger,
	}
}

// Group assigns each element to the first taxonomy entry whose keyword score
// clears the threshold, trying entries in declaration order. First match wins;
// the ordered scan is the tie-break that keeps output deterministic across
// runs. Elements matching no entry stay out of every section.
//
// Every taxonomy entry appears in the returned map, including entries that
// matched nothing; empty sections are valid, queryable, and simply skipped at
// render time.
func (g *Grouper) Group(elements []*models.Element, taxonomy []models.TaxonomyEntry, bounds geometry.BoundsCache) map[string]*models.Section {
	out := make(map[string]*models.Section, len(taxonomy))
	for _, entry := range taxonomy {
		out[entry.Key] = &models.Section{
			Key:         entry.Key,
			DisplayName: entry.DisplayName,
			Color:       entry.Color,
		}
	}

	for _, elem := range elements {
		for _, entry := range taxonomy {
			if keywordScore(elem.Text, entry.Keywords) > g.scoreThreshold {
				section := out[entry.Key]
				section.Elements = append(section.Elements, elem)
				break
			}
		}
	}

	for _, entry := range taxonomy {
		section := out[entry.Key]
		g.finalize(section, bounds)
	}

	return out
}

// keywordScore is the fraction of the keyword list found as case-insensitive
// substrings of the element text.
func keywordScore(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// placed pairs a member element with its canonical box.
type placed struct {
	elem *models.Element
	box  models.CanonicalBox
}

// finalize computes the section bounding box and its vertical sub-clusters.
func (g *Grouper) finalize(section *models.Section, bounds geometry.BoundsCache) {
	var members []placed
	for _, elem := range section.Elements {
		box, ok := bounds[elem.ID]
		if !ok {
			// No canonical box (malformed region); the element stays a
			// member but contributes no geometry.
			continue
		}
		members = append(members, placed{elem: elem, box: box})
	}

	if len(members) == 0 {
		section.BoundingBox = nil
		section.SubSections = nil
		return
	}

	boxes := make([]models.CanonicalBox, len(members))
	for i, m := range members {
		boxes[i] = m.box
	}
	section.BoundingBox = models.UnionBoxes(boxes)

	// Sort by vertical center and split at gaps larger than the proximity
	// threshold. A repeated keyword in a header and a footnote must not merge
	// into one box spanning the whole page; sub-sections give callers the
	// coherent spatial cluster instead.
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].box.CenterY() < members[j].box.CenterY()
	})

	var subs []models.SubSection
	var current []placed
	for i, m := range members {
		if i > 0 && m.box.CenterY()-current[len(current)-1].box.CenterY() > g.proximityThreshold {
			subs = append(subs, makeSubSection(current))
			current = nil
		}
		current = append(current, m)
	}
	if len(current) > 0 {
		subs = append(subs, makeSubSection(current))
	}

	section.SubSections = subs
}

func makeSubSection(members []placed) models.SubSection {
	elems := make([]*models.Element, len(members))
	boxes := make([]models.CanonicalBox, len(members))
	for i, m := range members {
		elems[i] = m.elem
		boxes[i] = m.box
	}
	return models.SubSection{Elements: elems, BoundingBox: models.UnionBoxes(boxes)}
}
