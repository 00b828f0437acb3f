package candidate

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of an import file.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// DetectFormat picks the decoder for an uploaded file from its extension,
// then its content type, then the first non-blank byte of the body.
func DetectFormat(filename, contentType string, body []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	case ".yaml", ".yml":
		return FormatYAML
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "csv"):
		return FormatCSV
	case strings.Contains(ct, "yaml"):
		return FormatYAML
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FormatJSON
	}
	if len(trimmed) > 0 && trimmed[0] == '-' {
		return FormatYAML
	}
	return FormatCSV
}

// DecodeInputs parses an import file into descriptors. A payload that cannot
// be decoded is reported as a *ValidationError on the "file" field.
func DecodeInputs(f Format, body []byte) ([]Input, error) {
	var (
		inputs []Input
		err    error
	)
	switch f {
	case FormatJSON:
		err = json.Unmarshal(body, &inputs)
	case FormatYAML:
		err = yaml.Unmarshal(body, &inputs)
	case FormatCSV:
		inputs, err = decodeCSV(bytes.NewReader(body))
	default:
		return nil, &ValidationError{Field: "file", Value: string(f), Msg: fmt.Sprintf("unsupported import format %q", f)}
	}
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, &ValidationError{Field: "file", Msg: fmt.Sprintf("malformed %s payload: %v", f, err)}
	}
	return inputs, nil
}

// BuildAll validates every descriptor. The first failure aborts and names the
// offending row.
func BuildAll(inputs []Input, now time.Time) ([]Candidate, error) {
	out := make([]Candidate, 0, len(inputs))
	for i := range inputs {
		c, err := inputs[i].Build(now)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Msg = fmt.Sprintf("row %d: %s", i+1, ve.Msg)
				return nil, ve
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ─── CSV ─────────────────────────────────────────────────────────────────────

var csvRequired = []string{"name", "email", "phone", "applied_role", "experience"}

// decodeCSV reads a header row followed by one descriptor per line. Unknown
// columns are ignored, empty cells count as absent. Skills are separated by
// semicolons.
func decodeCSV(r io.Reader) ([]Input, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range csvRequired {
		if _, ok := idx[col]; !ok {
			return nil, &ValidationError{
				Field:   "file",
				Value:   col,
				Allowed: csvRequired,
				Msg:     fmt.Sprintf("csv header is missing required column %q", col),
			}
		}
	}

	var inputs []Input
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		in, err := inputFromRecord(rec, idx)
		if err != nil {
			return nil, &ValidationError{Field: "file", Msg: fmt.Sprintf("csv line %d: %v", line, err)}
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func inputFromRecord(rec []string, idx map[string]int) (Input, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	opt := func(col string) *string {
		if v := get(col); v != "" {
			return &v
		}
		return nil
	}

	in := Input{
		Name:           get("name"),
		Email:          get("email"),
		Phone:          get("phone"),
		AppliedRole:    get("applied_role"),
		Experience:     get("experience"),
		Status:         opt("status"),
		Stage:          opt("stage"),
		Location:       opt("location"),
		ResumeURL:      opt("resume_url"),
		CoverLetterURL: opt("cover_letter_url"),
		ProjectURL:     opt("project_url"),
		Summary:        opt("summary"),
		PhotoURL:       opt("photo_url"),
	}

	if v := get("rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Input{}, fmt.Errorf("invalid rating %q", v)
		}
		in.Rating = &r
	}
	if v := get("application_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return Input{}, err
		}
		in.ApplicationDate = &t
	}
	if v := get("skills"); v != "" {
		for _, s := range strings.Split(v, ";") {
			if s = strings.TrimSpace(s); s != "" {
				in.Skills = append(in.Skills, s)
			}
		}
	}
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid application_date %q", s)
}
