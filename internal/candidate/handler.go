package candidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/logging"
)

// ─── Response types ───────────────────────────────────────────────────────────

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Allowed []string `json:"allowed,omitempty"`
}

// MessageResponse acknowledges a bulk write.
type MessageResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// HandlerOptions configures the HTTP surface.
type HandlerOptions struct {
	// MaxUploadBytes bounds the multipart body of an import.
	MaxUploadBytes int64
	// SeedEnabled exposes the destructive POST /seed/ endpoint.
	SeedEnabled bool
}

// Handler adapts Service to net/http.
type Handler struct {
	svc  *Service
	opts HandlerOptions
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, opts HandlerOptions) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{svc: svc, opts: opts}
}

// RegisterRoutes mounts the candidate routes on mux. Every route answers with
// and without a trailing slash.
//
//	GET   /candidates/                 → list all
//	POST  /candidates/                 → create one
//	GET   /candidates/filter/          → filtered, sorted list
//	GET   /candidates/search/          → free-text search
//	POST  /candidates/import/          → bulk import (json, csv, yaml)
//	GET   /candidates/{id}/            → fetch one
//	PATCH /candidates/{id}/status/     → update status, stage or rating
//	GET   /candidates/{id}/pdf/        → profile document
//	POST  /seed/                       → replace store with demo data
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	route(mux, http.MethodGet, "/candidates", h.list)
	route(mux, http.MethodPost, "/candidates", h.create)
	route(mux, http.MethodGet, "/candidates/filter", h.filter)
	route(mux, http.MethodGet, "/candidates/search", h.search)
	route(mux, http.MethodPost, "/candidates/import", h.importFile)
	route(mux, http.MethodGet, "/candidates/{id}", h.get)
	route(mux, http.MethodPatch, "/candidates/{id}/status", h.updateStatus)
	route(mux, http.MethodGet, "/candidates/{id}/pdf", h.pdf)
	route(mux, http.MethodPost, "/seed", h.seed)
}

func route(mux *http.ServeMux, method, path string, fn http.HandlerFunc) {
	mux.HandleFunc(method+" "+path+"/{$}", fn)
	mux.HandleFunc(method+" "+path, fn)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

// list godoc
// @Summary List candidates
// @Tags candidates
// @Produce json
// @Success 200 {array} Candidate
// @Router /candidates/ [get]
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, cs)
}

// create godoc
// @Summary Create a candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Param candidate body Input true "Candidate"
// @Success 201 {object} Candidate
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /candidates/ [post]
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, &ValidationError{Field: "body", Msg: "invalid JSON body"})
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonStatus(w, http.StatusCreated, c)
}

// filter godoc
// @Summary Filter and sort candidates
// @Tags candidates
// @Produce json
// @Param role query string false "Applied role (case-insensitive)"
// @Param status query string false "Status" Enums(Pending, In Process, Selected, Rejected, Accepted)
// @Param stage query string false "Stage" Enums(Screening, Design Challenge, Interview, HR Round, Hired, Rejected)
// @Param search query string false "Substring of name, email or role"
// @Param sort_by query string false "Sort field" Enums(name, application_date, rating)
// @Param month_year query string false "Application month, YYYY-MM"
// @Success 200 {array} Candidate
// @Failure 400 {object} ErrorResponse
// @Router /candidates/filter/ [get]
func (h *Handler) filter(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.Filter(r.Context(), FilterParamsFromValues(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, cs)
}

// search godoc
// @Summary Search candidates
// @Tags candidates
// @Produce json
// @Param query query string false "Free text"
// @Success 200 {array} Candidate
// @Router /candidates/search/ [get]
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, cs)
}

// importFile godoc
// @Summary Bulk import candidates
// @Description Upload a JSON array, CSV or YAML file of candidates. The batch is all or nothing.
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Candidates file"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /candidates/import/ [post]
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		writeError(w, r, &ValidationError{
			Field: "file",
			Msg:   fmt.Sprintf("file too large or invalid (max %d bytes)", h.opts.MaxUploadBytes),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, &ValidationError{Field: "file", Msg: "no file uploaded"})
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	n, err := h.svc.Import(r.Context(), header.Filename, header.Header.Get("Content-Type"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, MessageResponse{Message: "Candidates imported successfully", Count: n})
}

// get godoc
// @Summary Get a candidate
// @Tags candidates
// @Produce json
// @Param id path int true "Candidate ID"
// @Success 200 {object} Candidate
// @Failure 404 {object} ErrorResponse
// @Router /candidates/{id}/ [get]
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, c)
}

// updateStatus godoc
// @Summary Update status, stage or rating
// @Description Each field is optional. Rating must be within 0 and 5.
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path int true "Candidate ID"
// @Param update body StatusUpdate true "Fields to change"
// @Success 200 {object} Candidate
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /candidates/{id}/status/ [patch]
func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var u StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, &ValidationError{Field: "body", Msg: "invalid JSON body"})
		return
	}
	c, err := h.svc.UpdateStatus(r.Context(), id, u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, c)
}

// pdf godoc
// @Summary Download the candidate profile
// @Tags candidates
// @Produce application/pdf
// @Param id path int true "Candidate ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /candidates/{id}/pdf/ [get]
func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.svc.RenderPDF(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

// seed godoc
// @Summary Replace all candidates with demo data
// @Description Destructive. Only available when seeding is enabled.
// @Tags dev
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Router /seed/ [post]
func (h *Handler) seed(w http.ResponseWriter, r *http.Request) {
	if !h.opts.SeedEnabled {
		jsonStatus(w, http.StatusForbidden, ErrorResponse{Error: "seeding is disabled"})
		return
	}
	n, err := h.svc.Seed(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, MessageResponse{Message: "Sample data created successfully", Count: n})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Field: "id", Value: raw, Msg: fmt.Sprintf("invalid candidate id %q", raw)}
	}
	return id, nil
}

// writeError maps classified errors to their status code. Anything else is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		jsonStatus(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field, Allowed: ve.Allowed})
	case errors.Is(err, ErrNotFound):
		jsonStatus(w, http.StatusNotFound, ErrorResponse{Error: ErrNotFound.Error()})
	case errors.Is(err, ErrConflict):
		jsonStatus(w, http.StatusConflict, ErrorResponse{Error: ErrConflict.Error()})
	case errors.Is(err, ErrRender):
		logging.FromContext(r.Context()).Error("render failed", zap.Error(err))
		jsonStatus(w, http.StatusInternalServerError, ErrorResponse{Error: ErrRender.Error()})
	default:
		logging.FromContext(r.Context()).Error("request failed", zap.Error(err))
		jsonStatus(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
