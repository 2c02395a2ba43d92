package models

// AnalysisResult is the structured output of the document-analysis collaborator.
// Scaena never calls the analysis service; it only consumes this shape.
type AnalysisResult struct {
	Pages         []AnalysisPage         `json:"pages" validate:"required,min=1"`
	Paragraphs    []AnalysisParagraph    `json:"paragraphs"`
	Tables        []AnalysisTable        `json:"tables"`
	KeyValuePairs []AnalysisKeyValuePair `json:"key_value_pairs"`
}

// AnalysisPage carries per-page dimensions in the unit the service declared.
type AnalysisPage struct {
	PageNumber int        `json:"page_number"`
	Width      float64    `json:"width" validate:"gt=0"`
	Height     float64    `json:"height" validate:"gt=0"`
	Unit       LengthUnit `json:"unit"`
}

// AnalysisParagraph is one extracted paragraph.
type AnalysisParagraph struct {
	Content         string           `json:"content"`
	Confidence      float64          `json:"confidence"`
	BoundingRegions []BoundingRegion `json:"bounding_regions"`
}

// AnalysisTable is one extracted table with its cells.
type AnalysisTable struct {
	RowCount        int                 `json:"row_count"`
	ColumnCount     int                 `json:"column_count"`
	Cells           []AnalysisTableCell `json:"cells"`
	BoundingRegions []BoundingRegion    `json:"bounding_regions"`
}

// AnalysisTableCell is one table cell.
type AnalysisTableCell struct {
	RowIndex        int              `json:"row_index"`
	ColumnIndex     int              `json:"column_index"`
	Content         string           `json:"content"`
	Confidence      float64          `json:"confidence"`
	BoundingRegions []BoundingRegion `json:"bounding_regions"`
}

// AnalysisKeyValuePair is one extracted key/value field.
type AnalysisKeyValuePair struct {
	Key        AnalysisField `json:"key"`
	Value      AnalysisField `json:"value"`
	Confidence float64       `json:"confidence"`
}

// AnalysisField is the key or value half of a key/value pair.
type AnalysisField struct {
	Content         string           `json:"content"`
	BoundingRegions []BoundingRegion `json:"bounding_regions"`
}
