package models

// TaxonomyEntry is one row of the ordered section taxonomy table.
// Declaration order is significant: the grouper assigns each element to the
// first entry whose keyword score clears the threshold.
type TaxonomyEntry struct {
	Key         string   `json:"key" yaml:"key"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Color       string   `json:"color" yaml:"color"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
}

// SubSection is a spatially coherent cluster of a section's elements.
type SubSection struct {
	Elements    []*Element    `json:"elements"`
	BoundingBox *CanonicalBox `json:"bounding_box"`
}

// Section is a semantic grouping of elements (e.g., "financial", "member info").
// BoundingBox is the union of all member elements' primary canonical boxes, or
// nil when the section has no members. SubSections partition Elements exactly
// once by vertical proximity so callers can pick the relevant spatial cluster
// instead of the section's full span.
type Section struct {
	Key         string        `json:"key"`
	DisplayName string        `json:"display_name"`
	Color       string        `json:"color"`
	Elements    []*Element    `json:"elements"`
	BoundingBox *CanonicalBox `json:"bounding_box"`
	SubSections []SubSection  `json:"sub_sections"`
}

// IsEmpty reports whether the taxonomy entry matched no elements.
// Empty sections stay in the section map as valid, queryable entries; they are
// only omitted from rendered output.
func (s *Section) IsEmpty() bool {
	return s == nil || len(s.Elements) == 0
}
