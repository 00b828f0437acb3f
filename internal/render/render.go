// Package render produces the downloadable candidate profile. A candidate is
// first rendered to an HTML document, which is then laid out as a PDF.
package render

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/candidate"
)

//go:embed profile.html
var profileHTML string

const dateLayout = "January 2, 2006"

// Options configures the PDF metadata.
type Options struct {
	Author string
}

// Renderer implements candidate.Renderer.
type Renderer struct {
	tmpl *template.Template
	opts Options
}

var _ candidate.Renderer = (*Renderer)(nil)

// New parses the profile template.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New("profile").
		Funcs(template.FuncMap{"link": link}).
		Parse(profileHTML)
	if err != nil {
		return nil, fmt.Errorf("parse profile template: %w", err)
	}
	if opts.Author == "" {
		opts.Author = "HR Candidate Review"
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

// Render returns the PDF document of c. Every failure wraps
// candidate.ErrRender.
func (r *Renderer) Render(ctx context.Context, c *candidate.Candidate, p candidate.Profile) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", candidate.ErrRender, err)
	}
	doc, err := r.HTML(c, p)
	if err != nil {
		return nil, err
	}
	out, err := toPDF(doc, pdfMeta{
		Title:   c.Name,
		Author:  r.opts.Author,
		Created: c.ApplicationDate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", candidate.ErrRender, err)
	}
	return out, nil
}

// HTML returns the intermediate document. Sections without content are
// omitted.
func (r *Renderer) HTML(c *candidate.Candidate, p candidate.Profile) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, newView(c, p)); err != nil {
		return nil, fmt.Errorf("%w: execute template: %v", candidate.ErrRender, err)
	}
	return buf.Bytes(), nil
}

// view is the template data. Sections are nil when empty.
type view struct {
	Name        string
	Email       string
	Phone       string
	AppliedRole string
	Experience  string
	Status      string
	Stage       string
	Rating      string
	Location    string
	AppliedOn   string
	Summary     string
	Skills      []string
	Education   []candidate.Education
	History     []candidate.Employment
	Projects    []candidate.Project
	Links       []candidate.Link
}

func newView(c *candidate.Candidate, p candidate.Profile) view {
	v := view{
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		AppliedRole: c.AppliedRole,
		Experience:  c.Experience,
		Status:      c.Status,
		Stage:       c.Stage,
		Rating:      candidate.FormatRating(c.Rating),
		Location:    "Not specified",
		AppliedOn:   c.ApplicationDate.Format(dateLayout),
		Skills:      p.Skills,
		Education:   p.Education,
		History:     p.Experience,
		Projects:    p.Projects,
		Links:       p.Links,
	}
	if c.Location != nil && strings.TrimSpace(*c.Location) != "" {
		v.Location = *c.Location
	}
	if c.Summary != nil {
		v.Summary = strings.TrimSpace(*c.Summary)
	}
	return v
}

// link renders an anchor whose target and text are escaped. Targets with a
// scheme other than http, https or mailto are shown as plain text.
func link(target string) template.HTML {
	target = strings.TrimSpace(target)
	text := escapeLink(target)
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "mailto") {
		return template.HTML(text)
	}
	return template.HTML(`<a href="` + text + `">` + text + `</a>`)
}

var linkEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
)

func escapeLink(s string) string { return linkEscaper.Replace(s) }
