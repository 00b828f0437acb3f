// Package candidate contains the candidate store, the query engine and the
// transport-agnostic business logic of the review service.
package candidate

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Link map keys folded from the import descriptors.
const (
	LinkResume      = "resume"
	LinkCoverLetter = "cover_letter"
	LinkProject     = "project"
)

// Candidate is the JSON shape returned to clients and the row stored in the
// candidates table.
type Candidate struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Location        *string   `json:"location"`
	AppliedRole     string    `json:"applied_role"`
	Experience      string    `json:"experience"`
	ApplicationDate time.Time `json:"application_date"`
	Status          string    `json:"status"`
	Stage           string    `json:"stage"`
	Rating          float64   `json:"rating"`
	// Attachments is the link count at creation/import time. Later edits do
	// not recompute it.
	Attachments int     `json:"attachments"`
	Summary     *string `json:"summary,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`

	Skills            Blob `json:"skills,omitempty"`
	Education         Blob `json:"education,omitempty"`
	ExperienceHistory Blob `json:"experience_history,omitempty"`
	Projects          Blob `json:"projects,omitempty"`
	URLs              Blob `json:"urls,omitempty"`
}

// Blob is an optional JSON sub-document kept as opaque text. Malformed
// content is stored as-is and encoded as null.
type Blob string

// MarshalJSON emits the document verbatim when it is valid JSON.
func (b Blob) MarshalJSON() ([]byte, error) {
	if b == "" || !json.Valid([]byte(b)) {
		return []byte("null"), nil
	}
	return []byte(b), nil
}

// UnmarshalJSON keeps the raw document. A JSON string is unwrapped so that
// rows exported with string-encoded blobs round-trip.
func (b *Blob) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = Blob(s)
		return nil
	}
	*b = Blob(data)
	return nil
}

func (b Blob) ptr() *string {
	if b == "" {
		return nil
	}
	s := string(b)
	return &s
}

func blobFrom(s *string) Blob {
	if s == nil {
		return ""
	}
	return Blob(*s)
}

func encodeBlob(v any, empty bool) (Blob, error) {
	if empty {
		return "", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Blob(raw), nil
}

// ─── Sub-documents ───────────────────────────────────────────────────────────

// Education is one entry of the education list.
type Education struct {
	Degree      string `json:"degree" yaml:"degree"`
	Institution string `json:"institution" yaml:"institution"`
	Year        Year   `json:"year,omitempty" yaml:"year,omitempty"`
}

// Employment is one entry of the employment history.
type Employment struct {
	Company     string `json:"company" yaml:"company"`
	Role        string `json:"role" yaml:"role"`
	Duration    string `json:"duration" yaml:"duration"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Project is one entry of the project list.
type Project struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Link        string `json:"link,omitempty" yaml:"link,omitempty"`
}

// Year is a completion year accepted as a JSON number or string.
type Year int

// UnmarshalJSON accepts 2019 and "2019".
func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid year %s", data)
	}
	*y = Year(n)
	return nil
}

// Link is one attachment entry of the link map.
type Link struct {
	Kind string
	URL  string
}

// Label is the display name of the link kind.
func (l Link) Label() string {
	switch l.Kind {
	case LinkResume:
		return "Resume"
	case LinkCoverLetter:
		return "Cover Letter"
	case LinkProject:
		return "Project"
	}
	words := strings.Fields(strings.ReplaceAll(l.Kind, "_", " "))
	for i, w := range words {
		r, n := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[n:]
	}
	return strings.Join(words, " ")
}

// Profile is the parsed view of the optional sub-documents.
type Profile struct {
	Links      []Link
	Skills     []string
	Education  []Education
	Experience []Employment
	Projects   []Project

	// Malformed lists the fields whose content could not be parsed and was
	// treated as empty.
	Malformed []string
}

// ParseProfile decodes every optional sub-document of c independently. A
// document that is absent or fails to parse yields an empty section; it is
// never an error.
func ParseProfile(c *Candidate) Profile {
	var p Profile
	decode := func(field string, b Blob, dst any) bool {
		if strings.TrimSpace(string(b)) == "" {
			return false
		}
		if err := json.Unmarshal([]byte(b), dst); err != nil {
			p.Malformed = append(p.Malformed, field)
			return false
		}
		return true
	}

	var links map[string]string
	if decode("urls", c.URLs, &links) {
		p.Links = orderedLinks(links)
	}

	var skills []string
	if decode("skills", c.Skills, &skills) {
		for _, s := range skills {
			if s = strings.TrimSpace(s); s != "" {
				p.Skills = append(p.Skills, s)
			}
		}
	}

	var education []Education
	if decode("education", c.Education, &education) {
		p.Education = education
	}
	var history []Employment
	if decode("experience_history", c.ExperienceHistory, &history) {
		p.Experience = history
	}
	var projects []Project
	if decode("projects", c.Projects, &projects) {
		p.Projects = projects
	}
	return p
}

// orderedLinks returns the populated links with the well-known kinds first.
func orderedLinks(m map[string]string) []Link {
	known := []string{LinkResume, LinkCoverLetter, LinkProject}
	var out []Link
	for _, k := range known {
		if u := strings.TrimSpace(m[k]); u != "" {
			out = append(out, Link{Kind: k, URL: u})
		}
	}
	var extra []string
	for k, u := range m {
		if k == LinkResume || k == LinkCoverLetter || k == LinkProject || strings.TrimSpace(u) == "" || k == "" {
			continue
		}
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, Link{Kind: k, URL: strings.TrimSpace(m[k])})
	}
	return out
}

// ─── Input ───────────────────────────────────────────────────────────────────

// Input describes a candidate to create. It is the body of POST /candidates/
// and one descriptor of a bulk import.
type Input struct {
	Name        string `json:"name" yaml:"name"`
	Email       string `json:"email" yaml:"email"`
	Phone       string `json:"phone" yaml:"phone"`
	AppliedRole string `json:"applied_role" yaml:"applied_role"`
	Experience  string `json:"experience" yaml:"experience"`

	Status          *string    `json:"status,omitempty" yaml:"status,omitempty"`
	Stage           *string    `json:"stage,omitempty" yaml:"stage,omitempty"`
	Rating          *float64   `json:"rating,omitempty" yaml:"rating,omitempty"`
	Location        *string    `json:"location,omitempty" yaml:"location,omitempty"`
	ApplicationDate *time.Time `json:"application_date,omitempty" yaml:"application_date,omitempty"`

	ResumeURL      *string           `json:"resume_url,omitempty" yaml:"resume_url,omitempty"`
	CoverLetterURL *string           `json:"cover_letter_url,omitempty" yaml:"cover_letter_url,omitempty"`
	ProjectURL     *string           `json:"project_url,omitempty" yaml:"project_url,omitempty"`
	URLs           map[string]string `json:"urls,omitempty" yaml:"urls,omitempty"`

	Summary           *string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	PhotoURL          *string      `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
	Skills            []string     `json:"skills,omitempty" yaml:"skills,omitempty"`
	Education         []Education  `json:"education,omitempty" yaml:"education,omitempty"`
	ExperienceHistory []Employment `json:"experience_history,omitempty" yaml:"experience_history,omitempty"`
	Projects          []Project    `json:"projects,omitempty" yaml:"projects,omitempty"`
}

// Links folds the link map and the three named URL fields into one map. The
// named fields win over map entries of the same kind; empty URLs are dropped.
func (in *Input) Links() map[string]string {
	links := make(map[string]string)
	for k, v := range in.URLs {
		if k = strings.TrimSpace(k); k != "" && strings.TrimSpace(v) != "" {
			links[k] = strings.TrimSpace(v)
		}
	}
	named := map[string]*string{
		LinkResume:      in.ResumeURL,
		LinkCoverLetter: in.CoverLetterURL,
		LinkProject:     in.ProjectURL,
	}
	for k, v := range named {
		if v != nil && strings.TrimSpace(*v) != "" {
			links[k] = strings.TrimSpace(*v)
		}
	}
	return links
}

// Build validates in and returns the candidate to insert. now is used when no
// application date is given. Status and stage values are not checked against
// the enumerations here; only the filter path enforces them.
func (in *Input) Build(now time.Time) (Candidate, error) {
	c := Candidate{
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		AppliedRole:     strings.TrimSpace(in.AppliedRole),
		Experience:      strings.TrimSpace(in.Experience),
		Status:          string(StatusPending),
		Stage:           string(StageScreening),
		ApplicationDate: now.UTC(),
		Location:        trimmedOrNil(in.Location),
		Summary:         trimmedOrNil(in.Summary),
		PhotoURL:        trimmedOrNil(in.PhotoURL),
	}

	required := []struct{ field, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"applied_role", c.AppliedRole},
		{"experience", c.Experience},
	}
	for _, r := range required {
		if r.value == "" {
			return Candidate{}, invalid(r.field, "%s is required", r.field)
		}
	}

	if s := trimmedOrNil(in.Status); s != nil {
		c.Status = *s
	}
	if s := trimmedOrNil(in.Stage); s != nil {
		c.Stage = *s
	}
	if in.Rating != nil {
		r, err := NormalizeRating(*in.Rating)
		if err != nil {
			return Candidate{}, err
		}
		c.Rating = r
	}
	if in.ApplicationDate != nil && !in.ApplicationDate.IsZero() {
		c.ApplicationDate = in.ApplicationDate.UTC()
	}

	links := in.Links()
	c.Attachments = len(links)

	var err error
	if c.URLs, err = encodeBlob(links, len(links) == 0); err != nil {
		return Candidate{}, fmt.Errorf("encode urls: %w", err)
	}
	if c.Skills, err = encodeBlob(in.Skills, len(in.Skills) == 0); err != nil {
		return Candidate{}, fmt.Errorf("encode skills: %w", err)
	}
	if c.Education, err = encodeBlob(in.Education, len(in.Education) == 0); err != nil {
		return Candidate{}, fmt.Errorf("encode education: %w", err)
	}
	if c.ExperienceHistory, err = encodeBlob(in.ExperienceHistory, len(in.ExperienceHistory) == 0); err != nil {
		return Candidate{}, fmt.Errorf("encode experience_history: %w", err)
	}
	if c.Projects, err = encodeBlob(in.Projects, len(in.Projects) == 0); err != nil {
		return Candidate{}, fmt.Errorf("encode projects: %w", err)
	}
	return c, nil
}

// NormalizeRating checks that r is within [0, 5] and rounds it to one
// decimal place.
func NormalizeRating(r float64) (float64, error) {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, invalid("rating", "rating must be a number between 0 and 5")
	}
	d := decimal.NewFromFloat(r).Round(1)
	if d.LessThan(decimal.Zero) || d.GreaterThan(decimal.NewFromInt(5)) {
		return 0, invalid("rating", "rating must be between 0 and 5, got %s", d.String())
	}
	return d.InexactFloat64(), nil
}

// FormatRating renders a rating as "4.5 / 5.0".
func FormatRating(r float64) string {
	return decimal.NewFromFloat(r).StringFixed(1) + " / 5.0"
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
