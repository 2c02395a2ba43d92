package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/common"
	"github.com/ternarybob/scaena/internal/interfaces"
	"github.com/ternarybob/scaena/internal/models"
	"github.com/ternarybob/scaena/internal/services/alignment"
	"github.com/ternarybob/scaena/internal/services/geometry"
	"github.com/ternarybob/scaena/internal/services/sections"
	"github.com/ternarybob/scaena/internal/services/timeline"
)

// Service runs the four-stage pipeline: coordinate normalization, section
// grouping, narration alignment, timeline building. All stages are pure,
// synchronous transformations over immutable inputs; each invocation owns its
// own element/section/timeline graph.
type Service struct {
	config     *common.PipelineConfig
	taxonomy   []models.TaxonomyEntry
	normalizer *geometry.Normalizer
	grouper    *sections.Grouper
	aligner    *alignment.Aligner
	builder    *timeline.Builder
	events     interfaces.EventService
	runs       interfaces.RunStorage
	logger     arbor.ILogger
}

// Compile-time assertion
var _ interfaces.PipelineService = (*Service)(nil)

// NewService creates a pipeline service. eventService and runStorage may be
// nil; the pipeline then runs without progress events or persistence.
func NewService(cfg *common.Config, taxonomy []models.TaxonomyEntry, eventService interfaces.EventService, runStorage interfaces.RunStorage, logger arbor.ILogger) *Service {
	return &Service{
		config:     &cfg.Pipeline,
		taxonomy:   taxonomy,
		normalizer: geometry.NewNormalizer(&cfg.Pipeline, logger),
		grouper:    sections.NewGrouper(&cfg.Pipeline, logger),
		aligner:    alignment.NewAligner(&cfg.Pipeline, logger),
		builder:    timeline.NewBuilder(&cfg.Pipeline, logger),
		events:     eventService,
		runs:       runStorage,
		logger:     logger,
	}
}

// Taxonomy returns the active taxonomy table.
func (s *Service) Taxonomy() []models.TaxonomyEntry {
	return s.taxonomy
}

// Process executes one document-processing run. The only failure paths are
// caller-side precondition violations (no pages, no script); malformed
// regions, unresolved alignments, and empty sections are all recovered
// locally, since a partial best-effort timeline beats aborting the document.
func (s *Service) Process(ctx context.Context, req *interfaces.PipelineRequest) (*models.ProcessingRun, error) {
	if len(req.Analysis.Pages) == 0 {
		return nil, fmt.Errorf("analysis result has no pages")
	}
	if len(req.Script) == 0 {
		return nil, fmt.Errorf("narration script has no steps")
	}

	run := &models.ProcessingRun{
		ID:        common.NewRunID(),
		Viewport:  s.normalizer.Viewport(),
		CreatedAt: time.Now(),
	}

	s.publish(ctx, interfaces.EventRunStarted, run.ID, map[string]interface{}{
		"steps": len(req.Script),
	})

	pages := buildPageTable(req.Analysis.Pages)
	firstPage := pageDimensionsPoints(req.Analysis.Pages[0])

	elements := flattenElements(&req.Analysis)
	run.ElementCount = len(elements)

	origin := req.Origin
	if origin == "" {
		origin = models.OriginConvention(s.config.Origin)
	}

	// Stage 1: coordinate normalization into the per-run bounds cache.
	stageStart := time.Now()
	bounds := geometry.NewBoundsCache()
	dropped := 0
	for _, elem := range elements {
		page := pages.forRegion(elem.PrimaryRegion(), firstPage)
		if _, ok := bounds.ElementBox(s.normalizer, elem, page, origin); !ok {
			dropped++
		}
	}
	run.DroppedCount = dropped
	s.stageDone(ctx, run, "normalize", stageStart, map[string]interface{}{
		"elements": len(elements),
		"dropped":  dropped,
	})

	// Stage 2: semantic section grouping.
	stageStart = time.Now()
	run.Sections = s.grouper.Group(elements, s.taxonomy, bounds)
	s.stageDone(ctx, run, "group", stageStart, map[string]interface{}{
		"sections": len(run.Sections),
	})

	// Stage 3: narration alignment, in step order.
	stageStart = time.Now()
	steps := make([]models.NarrationStep, len(req.Script))
	copy(steps, req.Script)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })

	run.Highlights = s.aligner.Align(steps, elements, bounds)
	for i, h := range run.Highlights {
		if h.NeedsReview {
			run.NeedsReviewSteps = append(run.NeedsReviewSteps, i)
			s.publish(ctx, interfaces.EventAlignmentUnresolved, run.ID, map[string]interface{}{
				"step":           h.Step,
				"highlight_text": steps[i].HighlightText,
			})
		}
	}
	s.stageDone(ctx, run, "align", stageStart, map[string]interface{}{
		"needs_review": len(run.NeedsReviewSteps),
	})

	// Stage 4: timeline building.
	stageStart = time.Now()
	run.Timeline = s.builder.Build(run.Highlights, steps)
	if len(run.Timeline) > 0 {
		run.TotalDuration = run.Timeline[len(run.Timeline)-1].EndTime
	}
	s.stageDone(ctx, run, "build", stageStart, map[string]interface{}{
		"entries": len(run.Timeline),
	})

	run.UpdatedAt = time.Now()

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			// The caller still gets the timeline; persistence is best-effort.
			s.logger.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to persist processing run")
		}
	}

	s.publish(ctx, interfaces.EventRunCompleted, run.ID, map[string]interface{}{
		"total_duration": run.TotalDuration,
		"needs_review":   run.NeedsReviewCount(),
	})

	s.logger.Info().
		Str("run_id", run.ID).
		Int("elements", run.ElementCount).
		Int("dropped", run.DroppedCount).
		Int("steps", len(steps)).
		Int("needs_review", run.NeedsReviewCount()).
		Msg("Processing run completed")

	return run, nil
}

func (s *Service) stageDone(ctx context.Context, run *models.ProcessingRun, stage string, start time.Time, payload map[string]interface{}) {
	elapsed := time.Since(start)
	run.Timings = append(run.Timings, models.StageTiming{
		Stage:      stage,
		DurationMs: float64(elapsed.Microseconds()) / 1000.0,
	})

	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["stage"] = stage
	payload["duration_ms"] = float64(elapsed.Microseconds()) / 1000.0
	s.publish(ctx, interfaces.EventStageCompleted, run.ID, payload)
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, runID string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	event := interfaces.Event{
		Type:      eventType,
		RunID:     runID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to publish pipeline event")
	}
}
