package candidate_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/candidate"
)

func newTestServer(t *testing.T, opts candidate.HandlerOptions) *httptest.Server {
	t.Helper()
	return newTestServerWithRenderer(t, opts, &stubRenderer{})
}

func newTestServerWithRenderer(t *testing.T, opts candidate.HandlerOptions, r candidate.Renderer) *httptest.Server {
	t.Helper()
	svc, _ := newService(t, candidate.ServiceOptions{Renderer: r})
	mux := http.NewServeMux()
	candidate.NewHandler(svc, opts).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("NewRequest() returned unexpected error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s returned unexpected error: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHandler_ListBothPathVariants(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{})
	for _, path := range []string{"/candidates/", "/candidates"} {
		resp := doJSON(t, http.MethodGet, srv.URL+path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
		cs := decode[[]candidate.Candidate](t, resp)
		if len(cs) != 6 || cs[0].ID != 1 {
			t.Errorf("GET %s returned %d candidates, want 6 ordered by id", path, len(cs))
		}
	}
}

func TestHandler_FilterErrors(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/candidates/filter/?status=Hired", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decode[candidate.ErrorResponse](t, resp)
	if body.Field != "status" || len(body.Allowed) == 0 {
		t.Errorf("error body = %+v, want field and allowed values", body)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/candidates/filter/?month_year=2024-13", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("month_year=2024-13 status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_FilterAndSearch(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/candidates/filter/?stage=Screening&sort_by=rating", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	cs := decode[[]candidate.Candidate](t, resp)
	if len(cs) != 1 || cs[0].Name != "Malaika Brown" {
		t.Errorf("filter returned %v, want Malaika Brown", names(cs))
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/candidates/search/?query=remote", nil)
	cs = decode[[]candidate.Candidate](t, resp)
	if len(cs) != 2 {
		t.Errorf("search returned %v, want the two remote candidates", names(cs))
	}
}

func TestHandler_GetCandidate(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/candidates/1/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	c := decode[candidate.Candidate](t, resp)
	if c.Name != "Charlie Kristen" || c.Attachments != 3 {
		t.Errorf("got %+v, want Charlie with 3 attachments", c)
	}

	cases := map[string]int{
		"/candidates/999/": http.StatusNotFound,
		"/candidates/999":  http.StatusNotFound,
		"/candidates/abc/": http.StatusBadRequest,
	}
	for path, want := range cases {
		if resp := doJSON(t, http.MethodGet, srv.URL+path, nil); resp.StatusCode != want {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, want)
		}
	}
}

func TestHandler_CreateCandidate(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{})

	in := map[string]any{
		"name": "Grace Hopper", "email": "grace@example.com", "phone": "+300",
		"applied_role": "Engineer", "experience": "30 years",
		"urls": map[string]string{"resume": "https://example.com/grace.pdf"},
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/candidates/", in)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	c := decode[candidate.Candidate](t, resp)
	if c.ID != 7 || c.Attachments != 1 || c.Status != "Pending" {
		t.Errorf("created %+v, want id 7, 1 attachment, Pending", c)
	}

	if resp := doJSON(t, http.MethodPost, srv.URL+"/candidates", in); resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", resp.StatusCode)
	}
	delete(in, "phone")
	in["email"] = "other@example.com"
	if resp := doJSON(t, http.MethodPost, srv.URL+"/candidates/", in); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("create without phone status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_UpdateStatus(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{})

	resp := doJSON(t, http.MethodPatch, srv.URL+"/candidates/5/status/", map[string]any{"rating": 3.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	c := decode[candidate.Candidate](t, resp)
	if c.Rating != 3 || c.Stage != "Interview" || c.Status != "In Process" {
		t.Errorf("updated %+v, want rating 3 with status and stage untouched", c)
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/candidates/5/status", map[string]any{"status": "Selected", "stage": "Hired"})
	c = decode[candidate.Candidate](t, resp)
	if c.Status != "Selected" || c.Stage != "Hired" {
		t.Errorf("updated %+v, want Selected/Hired", c)
	}

	if resp := doJSON(t, http.MethodPatch, srv.URL+"/candidates/5/status/", map[string]any{"rating": 7}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("rating 7 status = %d, want 400", resp.StatusCode)
	}
	if resp := doJSON(t, http.MethodPatch, srv.URL+"/candidates/99/status/", map[string]any{"status": "Selected"}); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_PDF(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/candidates/4/pdf/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	cd := resp.Header.Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, `filename="Ashley_Brooke_4.pdf"`) {
		t.Errorf("Content-Disposition = %q, want an attachment naming the candidate", cd)
	}

	if resp := doJSON(t, http.MethodGet, srv.URL+"/candidates/99/pdf/", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_PDFRenderFailure(t *testing.T) {
	srv := newTestServerWithRenderer(t, candidate.HandlerOptions{},
		&stubRenderer{err: errors.New("font table corrupt")})

	resp := doJSON(t, http.MethodGet, srv.URL+"/candidates/4/pdf/", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		t.Errorf("Content-Disposition = %q, want none on failure", cd)
	}
	body := decode[candidate.ErrorResponse](t, resp)
	if body.Error != candidate.ErrRender.Error() {
		t.Errorf("error = %q, want %q", body.Error, candidate.ErrRender.Error())
	}
	if strings.Contains(body.Error, "font table") {
		t.Errorf("error %q leaks the renderer failure", body.Error)
	}

	if resp := doJSON(t, http.MethodGet, srv.URL+"/candidates/99/pdf/", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp.StatusCode)
	}
}

func upload(t *testing.T, url, filename, content string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() returned unexpected error: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST %s returned unexpected error: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandler_Import(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{})

	resp := upload(t, srv.URL+"/candidates/import/", "people.yaml", importYAML)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := decode[candidate.MessageResponse](t, resp); got.Count != 2 {
		t.Errorf("count = %d, want 2", got.Count)
	}

	resp = upload(t, srv.URL+"/candidates/import", "people.json", importJSON)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("re-import status = %d, want 409", resp.StatusCode)
	}

	resp = upload(t, srv.URL+"/candidates/import/", "broken.json", "[{")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed import status = %d, want 400", resp.StatusCode)
	}

	list := decode[[]candidate.Candidate](t, doJSON(t, http.MethodGet, srv.URL+"/candidates/", nil))
	if len(list) != 8 {
		t.Errorf("store size = %d, want 8", len(list))
	}
}

func TestHandler_ImportTooLarge(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{MaxUploadBytes: 64})
	resp := upload(t, srv.URL+"/candidates/import/", "people.json", importJSON)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized import status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_Seed(t *testing.T) {
	disabled := newTestServer(t, candidate.HandlerOptions{})
	if resp := doJSON(t, http.MethodPost, disabled.URL+"/seed/", nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("disabled seed status = %d, want 403", resp.StatusCode)
	}

	enabled := newTestServer(t, candidate.HandlerOptions{SeedEnabled: true})
	resp := doJSON(t, http.MethodPost, enabled.URL+"/seed", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seed status = %d, want 200", resp.StatusCode)
	}
	if got := decode[candidate.MessageResponse](t, resp); got.Count != 6 {
		t.Errorf("seed count = %d, want 6", got.Count)
	}

	list := decode[[]candidate.Candidate](t, doJSON(t, http.MethodGet, enabled.URL+"/candidates/", nil))
	for _, c := range list {
		if c.ApplicationDate.After(time.Now()) {
			t.Errorf("%s applied in the future: %v", c.Name, c.ApplicationDate)
		}
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, candidate.HandlerOptions{})
	if resp := doJSON(t, http.MethodDelete, srv.URL+"/candidates/1/", nil); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", resp.StatusCode)
	}
}
