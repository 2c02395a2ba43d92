package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/interfaces"
	"github.com/ternarybob/scaena/internal/models"
)

// stubPipeline returns a canned run without running the real stages.
type stubPipeline struct {
	run      *models.ProcessingRun
	err      error
	received *interfaces.PipelineRequest
}

func (s *stubPipeline) Process(ctx context.Context, req *interfaces.PipelineRequest) (*models.ProcessingRun, error) {
	s.received = req
	if s.err != nil {
		return nil, s.err
	}
	return s.run, nil
}

func (s *stubPipeline) Taxonomy() []models.TaxonomyEntry {
	return []models.TaxonomyEntry{{Key: "member_info", DisplayName: "Member Information", Keywords: []string{"member"}}}
}

const validRequestBody = `{
	"analysis": {
		"pages": [{"page_number": 1, "width": 8.5, "height": 11, "unit": "inches"}],
		"paragraphs": [{
			"content": "Member Name: Jane",
			"bounding_regions": [{
				"page_number": 1,
				"polygon": [{"x":0.1,"y":0.1},{"x":0.5,"y":0.1},{"x":0.5,"y":0.2},{"x":0.1,"y":0.2}]
			}]
		}]
	},
	"script": [{"step_number": 1, "narrative": "intro", "highlight_text": "Member Name", "duration": 3}]
}`

func TestProcessHandler(t *testing.T) {
	stub := &stubPipeline{run: &models.ProcessingRun{ID: "run_ok", TotalDuration: 3.5}}
	handler := NewTimelineHandler(stub, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/timeline", strings.NewReader(validRequestBody))
	rec := httptest.NewRecorder()
	handler.ProcessHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var run models.ProcessingRun
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("response is not a run: %v", err)
	}
	if run.ID != "run_ok" {
		t.Errorf("run ID = %q, want run_ok", run.ID)
	}
	if stub.received == nil || len(stub.received.Script) != 1 {
		t.Error("pipeline did not receive the decoded request")
	}
}

func TestProcessHandlerRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"malformed JSON", http.MethodPost, "{not json", http.StatusBadRequest},
		{"empty script", http.MethodPost, `{"analysis": {"pages": [{"page_number":1,"width":8.5,"height":11}]}, "script": []}`, http.StatusBadRequest},
		{
			"zero duration step",
			http.MethodPost,
			`{"analysis": {"pages": [{"page_number":1,"width":8.5,"height":11}]}, "script": [{"step_number":1,"duration":0}]}`,
			http.StatusBadRequest,
		},
		{
			"invalid origin",
			http.MethodPost,
			`{"analysis": {"pages": [{"page_number":1,"width":8.5,"height":11}]}, "script": [{"step_number":1,"duration":2}], "origin": "center"}`,
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPipeline{run: &models.ProcessingRun{ID: "run_ok"}}
			handler := NewTimelineHandler(stub, arbor.NewLogger())

			req := httptest.NewRequest(tt.method, "/api/timeline", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ProcessHandler(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if stub.received != nil {
				t.Error("invalid request reached the pipeline")
			}
		})
	}
}

func TestProcessHandlerPipelineFailure(t *testing.T) {
	stub := &stubPipeline{err: context.DeadlineExceeded}
	handler := NewTimelineHandler(stub, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/timeline", strings.NewReader(validRequestBody))
	rec := httptest.NewRecorder()
	handler.ProcessHandler(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for pipeline failure", rec.Code)
	}
}

func TestTaxonomyHandler(t *testing.T) {
	handler := NewTimelineHandler(&stubPipeline{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/taxonomy", nil)
	rec := httptest.NewRecorder()
	handler.TaxonomyHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Sections []models.TaxonomyEntry `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Sections) != 1 || body.Sections[0].Key != "member_info" {
		t.Errorf("sections = %+v, want the stub taxonomy", body.Sections)
	}
}
