package candidate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/events"
	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/logging"
)

// ─── Collaborators ───────────────────────────────────────────────────────────

// Renderer turns a candidate and its parsed profile into a PDF document.
type Renderer interface {
	Render(ctx context.Context, c *Candidate, p Profile) ([]byte, error)
}

// Recorder receives business counters. metrics.Metrics implements it.
type Recorder interface {
	PDFRendered(ok bool)
	CandidatesImported(n int)
}

type nopRecorder struct{}

func (nopRecorder) PDFRendered(bool)       {}
func (nopRecorder) CandidatesImported(int) {}

// Document is a rendered profile ready to be sent as an attachment.
type Document struct {
	Filename string
	Body     []byte
}

// ─── Service ─────────────────────────────────────────────────────────────────

// ServiceOptions configures a Service. Zero values select sensible defaults.
type ServiceOptions struct {
	DefaultSort SortField
	// StrictStatusUpdates rejects status and stage values outside the
	// enumerations on update. When false they are stored as given.
	StrictStatusUpdates bool
	Now                 func() time.Time
	Publisher           events.Publisher
	Renderer            Renderer
	Recorder            Recorder
}

// Service encapsulates the candidate business logic. It has no dependency on
// net/http and is shared by the HTTP handler and the gRPC server.
type Service struct {
	store    Store
	opts     ServiceOptions
	pub      events.Publisher
	renderer Renderer
	rec      Recorder
}

// NewService returns a Service over store.
func NewService(store Store, opts ServiceOptions) *Service {
	s := &Service{
		store:    store,
		opts:     opts,
		pub:      opts.Publisher,
		renderer: opts.Renderer,
		rec:      opts.Recorder,
	}
	if s.opts.DefaultSort == "" {
		s.opts.DefaultSort = SortByName
	}
	if s.opts.Now == nil {
		s.opts.Now = time.Now
	}
	if s.pub == nil {
		s.pub = events.Nop{}
	}
	if s.rec == nil {
		s.rec = nopRecorder{}
	}
	return s
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// List returns every candidate ordered by id.
func (s *Service) List(ctx context.Context) ([]Candidate, error) {
	return s.store.List(ctx)
}

// Filter validates p and returns the matching candidates. Invalid parameters
// yield a *ValidationError, never an empty result.
func (s *Service) Filter(ctx context.Context, p FilterParams) ([]Candidate, error) {
	q, err := ParseQuery(p, s.opts.DefaultSort)
	if err != nil {
		return nil, err
	}
	return s.store.Find(ctx, q)
}

// Search matches term against every text field. An empty term returns all
// candidates ordered by name.
func (s *Service) Search(ctx context.Context, term string) ([]Candidate, error) {
	return s.store.Find(ctx, SearchQuery(term))
}

// Get returns ErrNotFound when id is unknown.
func (s *Service) Get(ctx context.Context, id int64) (*Candidate, error) {
	return s.store.Get(ctx, id)
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// Create validates in and inserts a single candidate.
func (s *Service) Create(ctx context.Context, in Input) (*Candidate, error) {
	c, err := in.Build(s.opts.Now())
	if err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.warnUnknownEnums(ctx, created.ID, &created.Status, &created.Stage)
	return created, nil
}

// UpdateStatus applies the non-empty fields of u. The rating is always range
// checked; status and stage are checked only in strict mode.
func (s *Service) UpdateStatus(ctx context.Context, id int64, u StatusUpdate) (*Candidate, error) {
	u.Status = trimmedOrNil(u.Status)
	u.Stage = trimmedOrNil(u.Stage)

	if s.opts.StrictStatusUpdates {
		if u.Status != nil {
			st, err := ParseStatus(*u.Status)
			if err != nil {
				return nil, err
			}
			v := string(st)
			u.Status = &v
		}
		if u.Stage != nil {
			st, err := ParseStage(*u.Stage)
			if err != nil {
				return nil, err
			}
			v := string(st)
			u.Stage = &v
		}
	}
	if u.Rating != nil {
		r, err := NormalizeRating(*u.Rating)
		if err != nil {
			return nil, err
		}
		u.Rating = &r
	}

	if u.Empty() {
		return s.store.Get(ctx, id)
	}

	c, err := s.store.UpdateStatus(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.warnUnknownEnums(ctx, id, u.Status, u.Stage)

	event := map[string]any{
		"type":        events.CandidateUpdated,
		"candidateId": c.ID,
		"status":      c.Status,
		"stage":       c.Stage,
		"rating":      c.Rating,
	}
	s.publish(ctx, events.CandidateUpdated, event)
	return c, nil
}

// Import decodes an uploaded file and inserts every descriptor in one unit of
// work. Any invalid descriptor or duplicate email aborts the whole batch.
func (s *Service) Import(ctx context.Context, filename, contentType string, body []byte) (int, error) {
	format := DetectFormat(filename, contentType, body)
	inputs, err := DecodeInputs(format, body)
	if err != nil {
		return 0, err
	}
	cs, err := BuildAll(inputs, s.opts.Now())
	if err != nil {
		return 0, err
	}
	if len(cs) == 0 {
		return 0, nil
	}

	n, err := s.store.InsertBatch(ctx, cs)
	if err != nil {
		return 0, err
	}
	s.rec.CandidatesImported(n)
	logging.FromContext(ctx).Info("candidates imported",
		zap.Int("count", n),
		zap.String("format", string(format)),
	)
	s.publish(ctx, events.CandidatesImported, map[string]any{
		"type":  events.CandidatesImported,
		"count": n,
	})
	return n, nil
}

// Seed replaces the whole store with the demo dataset.
func (s *Service) Seed(ctx context.Context) (int, error) {
	cs, err := SeedCandidates(s.opts.Now())
	if err != nil {
		return 0, err
	}
	n, err := s.store.Reset(ctx, cs)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Warn("store reset with demo candidates", zap.Int("count", n))
	s.publish(ctx, events.CandidatesSeeded, map[string]any{
		"type":  events.CandidatesSeeded,
		"count": n,
	})
	return n, nil
}

// ─── Rendering ───────────────────────────────────────────────────────────────

// RenderPDF produces the profile document of candidate id. A missing
// candidate is ErrNotFound; every rendering failure wraps ErrRender.
func (s *Service) RenderPDF(ctx context.Context, id int64) (*Document, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: no renderer configured", ErrRender)
	}

	p := ParseProfile(c)
	if len(p.Malformed) > 0 {
		logging.FromContext(ctx).Warn("ignoring malformed profile fields",
			zap.Int64("candidateId", c.ID),
			zap.Strings("fields", p.Malformed),
		)
	}

	body, err := s.renderer.Render(ctx, c, p)
	if err != nil {
		s.rec.PDFRendered(false)
		if !errors.Is(err, ErrRender) {
			err = fmt.Errorf("%w: %v", ErrRender, err)
		}
		return nil, err
	}
	s.rec.PDFRendered(true)
	return &Document{Filename: DocumentFilename(c), Body: body}, nil
}

// DocumentFilename is "<Name>_<id>.pdf" with spaces and any character that
// is unsafe in a header value replaced by underscores.
func DocumentFilename(c *Candidate) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == '.':
			return r
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		}
		return '_'
	}, strings.TrimSpace(c.Name))
	if name == "" {
		name = "candidate"
	}
	return name + "_" + strconv.FormatInt(c.ID, 10) + ".pdf"
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Service) publish(ctx context.Context, channel string, event any) {
	if err := s.pub.Publish(ctx, channel, event); err != nil {
		logging.FromContext(ctx).Warn("publish event failed",
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}

func (s *Service) warnUnknownEnums(ctx context.Context, id int64, status, stage *string) {
	if status != nil && !IsKnownStatus(*status) {
		logging.FromContext(ctx).Warn("stored status outside the enumeration",
			zap.Int64("candidateId", id),
			zap.String("status", *status),
		)
	}
	if stage != nil && !IsKnownStage(*stage) {
		logging.FromContext(ctx).Warn("stored stage outside the enumeration",
			zap.Int64("candidateId", id),
			zap.String("stage", *stage),
		)
	}
}
