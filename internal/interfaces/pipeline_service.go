package interfaces

import (
	"context"

	"github.com/ternarybob/scaena/internal/models"
)

// PipelineRequest is the full input for one document-processing run.
type PipelineRequest struct {
	Analysis models.AnalysisResult  `json:"analysis" validate:"required"`
	Script   []models.NarrationStep `json:"script" validate:"required,min=1,dive"`
	// Origin declares the coordinate convention of the analysis result.
	// Empty means the configured default applies.
	Origin models.OriginConvention `json:"origin,omitempty" validate:"omitempty,oneof=top-left bottom-left"`
}

// PipelineService runs the normalize -> group -> align -> build pipeline.
type PipelineService interface {
	Process(ctx context.Context, req *PipelineRequest) (*models.ProcessingRun, error)
	Taxonomy() []models.TaxonomyEntry
}
