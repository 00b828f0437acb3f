package candidate

import (
	"errors"
	"fmt"
	"strings"
)

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when no candidate has the requested id.
var ErrNotFound = errors.New("candidate not found")

// ErrConflict is returned when a write would break email uniqueness.
var ErrConflict = errors.New("candidate with this email already exists")

// ErrRender is returned when the profile document could not be produced.
// It never stands for a missing candidate.
var ErrRender = errors.New("failed to render candidate profile")

// ValidationError wraps a user-facing validation message about one field.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
	Msg     string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if b.Len() == 0 {
		fmt.Fprintf(&b, "invalid %s %q", e.Field, e.Value)
	}
	if len(e.Allowed) > 0 {
		fmt.Fprintf(&b, " (allowed: %s)", strings.Join(e.Allowed, ", "))
	}
	return b.String()
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
