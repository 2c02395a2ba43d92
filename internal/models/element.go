package models

// ElementKind tags the payload shape of an extracted content unit.
type ElementKind string

const (
	KindParagraph    ElementKind = "paragraph"
	KindTable        ElementKind = "table"
	KindTableCell    ElementKind = "tableCell"
	KindKeyValuePair ElementKind = "keyValuePair"
)

// Element is one extracted content unit from the analysis result.
// Created once per analysis pass and never mutated; the pipeline owns the
// slice for the lifetime of a single document-processing run.
type Element struct {
	ID         string           `json:"id"` // elem_{uuid}
	Kind       ElementKind      `json:"kind"`
	Text       string           `json:"text"`
	Confidence float64          `json:"confidence"`
	Regions    []BoundingRegion `json:"regions"`

	// Table cells only
	RowIndex    int `json:"row_index,omitempty"`
	ColumnIndex int `json:"column_index,omitempty"`
}

// PrimaryRegion returns the first bounding region, or nil when the element
// carries none. The first region is the element's anchor by convention.
func (e *Element) PrimaryRegion() *BoundingRegion {
	if e == nil || len(e.Regions) == 0 {
		return nil
	}
	return &e.Regions[0]
}
