package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/candidate"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/metrics"
)

var _ candidate.Recorder = (*metrics.Metrics)(nil)

func TestRecorder(t *testing.T) {
	m := metrics.New()
	m.PDFRendered(true)
	m.PDFRendered(true)
	m.PDFRendered(false)
	m.CandidatesImported(3)

	body := scrape(t, m)
	for _, want := range []string{
		`candidate_review_pdf_renders_total{result="ok"} 2`,
		`candidate_review_pdf_renders_total{result="error"} 1`,
		`candidate_review_imported_candidates_total 3`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics output is missing %q", want)
		}
	}
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read /metrics: %v", err)
	}
	return string(body)
}

func TestHandler_Exposition(t *testing.T) {
	m := metrics.New()
	m.ObserveHTTP("GET", "/candidates/", 200, 15*time.Millisecond)
	m.ObserveGRPC("/candidates.v1.CandidateService/GetCandidate", "OK")

	body := scrape(t, m)
	for _, want := range []string{
		`candidate_review_http_requests_total{code="200",method="GET",route="/candidates/"} 1`,
		"candidate_review_http_request_duration_seconds_bucket",
		"candidate_review_grpc_requests_total",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics output is missing %q", want)
		}
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Each instance owns its registry, so constructing twice must not panic.
	a, b := metrics.New(), metrics.New()
	if a.Registry() == b.Registry() {
		t.Error("New() should return distinct registries")
	}
}
