package candidate

import (
	"fmt"
	"strings"
)

// Status is the overall disposition of an application.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusInProcess Status = "In Process"
	StatusSelected  Status = "Selected"
	StatusRejected  Status = "Rejected"
	StatusAccepted  Status = "Accepted"
)

// Stage is the position of a candidate in the interview pipeline.
type Stage string

const (
	StageScreening       Stage = "Screening"
	StageDesignChallenge Stage = "Design Challenge"
	StageInterview       Stage = "Interview"
	StageHRRound         Stage = "HR Round"
	StageHired           Stage = "Hired"
	StageRejected        Stage = "Rejected"
)

// SortField names a column the filter endpoint can order by.
type SortField string

const (
	SortByName            SortField = "name"
	SortByApplicationDate SortField = "application_date"
	SortByRating          SortField = "rating"
)

var (
	allStatuses = []Status{StatusPending, StatusInProcess, StatusSelected, StatusRejected, StatusAccepted}
	allStages   = []Stage{StageScreening, StageDesignChallenge, StageInterview, StageHRRound, StageHired, StageRejected}
	allSorts    = []SortField{SortByName, SortByApplicationDate, SortByRating}
)

// Statuses returns the status enumeration in pipeline order.
func Statuses() []string { return toStrings(allStatuses) }

// Stages returns the stage enumeration in pipeline order.
func Stages() []string { return toStrings(allStages) }

// SortFields returns the accepted sort_by values.
func SortFields() []string { return toStrings(allSorts) }

// ParseStatus converts a raw string to a Status. Matching ignores case and
// surrounding whitespace; the canonical spelling is returned.
func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", &ValidationError{
		Field:   "status",
		Value:   s,
		Allowed: Statuses(),
		Msg:     fmt.Sprintf("unknown status %q", s),
	}
}

// ParseStage converts a raw string to a Stage, see ParseStatus.
func ParseStage(s string) (Stage, error) {
	for _, st := range allStages {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", &ValidationError{
		Field:   "stage",
		Value:   s,
		Allowed: Stages(),
		Msg:     fmt.Sprintf("unknown stage %q", s),
	}
}

// ParseSortField validates a sort_by value. Sort fields are column names and
// must match exactly.
func ParseSortField(s string) (SortField, error) {
	for _, f := range allSorts {
		if s == string(f) {
			return f, nil
		}
	}
	return "", &ValidationError{
		Field:   "sort_by",
		Value:   s,
		Allowed: SortFields(),
		Msg:     fmt.Sprintf("unknown sort field %q", s),
	}
}

// IsKnownStatus reports whether s is one of the enumerated statuses.
func IsKnownStatus(s string) bool {
	_, err := ParseStatus(s)
	return err == nil
}

// IsKnownStage reports whether s is one of the enumerated stages.
func IsKnownStage(s string) bool {
	_, err := ParseStage(s)
	return err == nil
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
