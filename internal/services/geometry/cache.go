package geometry

import (
	"github.com/ternarybob/scaena/internal/models"
)

// BoundsCache memoizes normalized boxes by element ID for a single run.
// It is built fresh per document-processing invocation and passed by
// reference through the pipeline; there is no process-wide cache.
type BoundsCache map[string]models.CanonicalBox

// NewBoundsCache creates an empty per-run cache.
func NewBoundsCache() BoundsCache {
	return make(BoundsCache)
}

// ElementBox returns the canonical box for an element's primary region,
// normalizing and caching on first access. Bottom-left-origin regions are
// flipped before normalization. Elements whose primary region is malformed
// yield (zero, false) and are skipped by callers.
func (c BoundsCache) ElementBox(n *Normalizer, elem *models.Element, page models.PageDimensions, origin models.OriginConvention) (models.CanonicalBox, bool) {
	if elem == nil {
		return models.CanonicalBox{}, false
	}
	if box, ok := c[elem.ID]; ok {
		return box, true
	}

	region := elem.PrimaryRegion()
	if origin == models.OriginBottomLeft {
		region = FlipRegionY(region, page)
	}

	box := n.Normalize(region, page)
	if box == nil {
		return models.CanonicalBox{}, false
	}

	c[elem.ID] = *box
	return *box, true
}
