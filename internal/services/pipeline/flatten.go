package pipeline

import (
	"strings"

	"github.com/ternarybob/scaena/internal/common"
	"github.com/ternarybob/scaena/internal/models"
	"github.com/ternarybob/scaena/internal/services/geometry"
)

// pageSizeCutoff separates inch-valued page dimensions from point-valued ones
// when the analysis result does not declare a page unit. No physical page is
// 50 inches wide, and none is under 50 points.
const pageSizeCutoff = 50.0

// pageTable resolves per-page dimensions in points.
type pageTable map[int]models.PageDimensions

func buildPageTable(pages []models.AnalysisPage) pageTable {
	table := make(pageTable, len(pages))
	for _, p := range pages {
		table[p.PageNumber] = pageDimensionsPoints(p)
	}
	return table
}

// forRegion returns the dimensions of the region's page, falling back to the
// first page when the region's page number is unknown.
func (t pageTable) forRegion(region *models.BoundingRegion, fallback models.PageDimensions) models.PageDimensions {
	if region != nil {
		if dims, ok := t[region.PageNumber]; ok {
			return dims
		}
	}
	return fallback
}

func pageDimensionsPoints(p models.AnalysisPage) models.PageDimensions {
	switch p.Unit {
	case models.UnitPoints:
		return models.PageDimensions{Width: p.Width, Height: p.Height}
	case models.UnitInches:
		return models.PageDimensions{Width: p.Width * geometry.PointsPerInch, Height: p.Height * geometry.PointsPerInch}
	}
	if p.Width <= pageSizeCutoff && p.Height <= pageSizeCutoff {
		return models.PageDimensions{Width: p.Width * geometry.PointsPerInch, Height: p.Height * geometry.PointsPerInch}
	}
	return models.PageDimensions{Width: p.Width, Height: p.Height}
}

// flattenElements converts the analysis result into the tagged element union
// the rest of the pipeline consumes. Elements are created once here and never
// mutated afterwards.
func flattenElements(analysis *models.AnalysisResult) []*models.Element {
	var out []*models.Element

	for _, para := range analysis.Paragraphs {
		out = append(out, &models.Element{
			ID:         common.NewElementID(),
			Kind:       models.KindParagraph,
			Text:       para.Content,
			Confidence: para.Confidence,
			Regions:    para.BoundingRegions,
		})
	}

	for _, table := range analysis.Tables {
		// The table itself is an element (for section grouping over its full
		// span) and each cell is one (for cell-precise alignment).
		var cellTexts []string
		for _, cell := range table.Cells {
			if cell.Content != "" {
				cellTexts = append(cellTexts, cell.Content)
			}
		}
		out = append(out, &models.Element{
			ID:      common.NewElementID(),
			Kind:    models.KindTable,
			Text:    strings.Join(cellTexts, " "),
			Regions: table.BoundingRegions,
		})

		for _, cell := range table.Cells {
			out = append(out, &models.Element{
				ID:          common.NewElementID(),
				Kind:        models.KindTableCell,
				Text:        cell.Content,
				Confidence:  cell.Confidence,
				Regions:     cell.BoundingRegions,
				RowIndex:    cell.RowIndex,
				ColumnIndex: cell.ColumnIndex,
			})
		}
	}

	for _, kv := range analysis.KeyValuePairs {
		text := kv.Key.Content
		if kv.Value.Content != "" {
			text = text + ": " + kv.Value.Content
		}
		regions := make([]models.BoundingRegion, 0, len(kv.Key.BoundingRegions)+len(kv.Value.BoundingRegions))
		regions = append(regions, kv.Key.BoundingRegions...)
		regions = append(regions, kv.Value.BoundingRegions...)
		out = append(out, &models.Element{
			ID:         common.NewElementID(),
			Kind:       models.KindKeyValuePair,
			Text:       text,
			Confidence: kv.Confidence,
			Regions:    regions,
		})
	}

	return out
}
