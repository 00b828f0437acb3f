package candidate

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const tableName = "candidates"

// columns is the select list shared by every read.
var columns = []string{
	"id", "name", "email", "phone", "location", "applied_role", "experience",
	"application_date", "status", "stage", "rating", "attachments",
	"summary", "photo_url", "skills", "education", "experience_history", "projects", "urls",
}

// Fields the free-text term is matched against.
var (
	filterSearchFields   = []string{"name", "email", "applied_role"}
	extendedSearchFields = []string{"name", "email", "phone", "applied_role", "stage", "status", "experience", "location"}
)

// FilterParams are the raw, unvalidated filter inputs as they arrive from a
// transport.
type FilterParams struct {
	Role      string
	Status    string
	Stage     string
	Search    string
	SortBy    string
	MonthYear string
}

// FilterParamsFromValues reads the filter endpoint query string.
func FilterParamsFromValues(v url.Values) FilterParams {
	return FilterParams{
		Role:      strings.TrimSpace(v.Get("role")),
		Status:    strings.TrimSpace(v.Get("status")),
		Stage:     strings.TrimSpace(v.Get("stage")),
		Search:    strings.TrimSpace(v.Get("search")),
		SortBy:    strings.TrimSpace(v.Get("sort_by")),
		MonthYear: strings.TrimSpace(v.Get("month_year")),
	}
}

// MonthRange is the half-open interval [Start, End) covering one calendar
// month in UTC.
type MonthRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (m MonthRange) Contains(t time.Time) bool {
	return !t.Before(m.Start) && t.Before(m.End)
}

var monthYearRe = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)

// Accepted year bounds for month_year.
const (
	minYear = 1970
	maxYear = 9999
)

// ParseMonthYear parses "YYYY-MM" into the month interval. December rolls
// over into January of the following year.
func ParseMonthYear(s string) (MonthRange, error) {
	bad := func(reason string) (MonthRange, error) {
		return MonthRange{}, &ValidationError{
			Field: "month_year",
			Value: s,
			Msg:   "month_year must be formatted as YYYY-MM: " + reason,
		}
	}

	m := monthYearRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return bad("malformed value " + strconv.Quote(s))
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return bad("month must be between 1 and 12")
	}
	if year < minYear || year > maxYear {
		return bad("year must be between " + strconv.Itoa(minYear) + " and " + strconv.Itoa(maxYear))
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return MonthRange{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// Query is a validated set of filters plus an ordering.
type Query struct {
	Role         string
	Status       Status
	Stage        Stage
	Search       string
	Period       *MonthRange
	SortBy       SortField
	searchFields []string
}

// ParseQuery validates p. Every failure is a *ValidationError naming the
// offending parameter; defaultSort applies when p.SortBy is empty.
func ParseQuery(p FilterParams, defaultSort SortField) (Query, error) {
	q := Query{
		Role:         p.Role,
		Search:       p.Search,
		SortBy:       defaultSort,
		searchFields: filterSearchFields,
	}
	if q.SortBy == "" {
		q.SortBy = SortByName
	}

	var err error
	if p.Status != "" {
		if q.Status, err = ParseStatus(p.Status); err != nil {
			return Query{}, err
		}
	}
	if p.Stage != "" {
		if q.Stage, err = ParseStage(p.Stage); err != nil {
			return Query{}, err
		}
	}
	if p.SortBy != "" {
		if q.SortBy, err = ParseSortField(p.SortBy); err != nil {
			return Query{}, err
		}
	}
	if p.MonthYear != "" {
		r, err := ParseMonthYear(p.MonthYear)
		if err != nil {
			return Query{}, err
		}
		q.Period = &r
	}
	return q, nil
}

// SearchQuery matches term against every text column, ordered by name.
func SearchQuery(term string) Query {
	return Query{
		Search:       strings.TrimSpace(term),
		SortBy:       SortByName,
		searchFields: extendedSearchFields,
	}
}

// SQL renders q as a Postgres SELECT over the candidates table.
func (q Query) SQL() (string, []any) {
	b := entsql.Dialect(dialect.Postgres)
	sel := b.Select(columns...).From(b.Table(tableName))

	if q.Role != "" {
		sel.Where(entsql.EqualFold("applied_role", q.Role))
	}
	if q.Status != "" {
		sel.Where(entsql.EQ("status", string(q.Status)))
	}
	if q.Stage != "" {
		sel.Where(entsql.EQ("stage", string(q.Stage)))
	}
	if q.Search != "" {
		preds := make([]*entsql.Predicate, 0, len(q.searchFields))
		for _, f := range q.searchFields {
			preds = append(preds, entsql.ContainsFold(f, q.Search))
		}
		sel.Where(entsql.Or(preds...))
	}
	if q.Period != nil {
		sel.Where(entsql.And(
			entsql.GTE("application_date", q.Period.Start),
			entsql.LT("application_date", q.Period.End),
		))
	}

	sel.OrderExpr(entsql.Expr(q.orderBy()))
	return sel.Query()
}

func (q Query) orderBy() string {
	switch q.SortBy {
	case SortByApplicationDate:
		return `"application_date" DESC, "id" ASC`
	case SortByRating:
		return `"rating" DESC, "id" ASC`
	default:
		return `"name" COLLATE "C" ASC, "id" ASC`
	}
}

// Match evaluates the filters against c in memory.
func (q Query) Match(c *Candidate) bool {
	if q.Role != "" && !strings.EqualFold(c.AppliedRole, q.Role) {
		return false
	}
	if q.Status != "" && c.Status != string(q.Status) {
		return false
	}
	if q.Stage != "" && c.Stage != string(q.Stage) {
		return false
	}
	if q.Period != nil && !q.Period.Contains(c.ApplicationDate) {
		return false
	}
	if q.Search == "" {
		return true
	}
	term := strings.ToLower(q.Search)
	for _, f := range q.searchFields {
		if strings.Contains(strings.ToLower(fieldValue(c, f)), term) {
			return true
		}
	}
	return false
}

// Less orders a before b according to q.SortBy, ties broken by id. Names
// compare byte-wise, the same order as the "C" collation used in SQL.
func (q Query) Less(a, b *Candidate) bool {
	switch q.SortBy {
	case SortByApplicationDate:
		if !a.ApplicationDate.Equal(b.ApplicationDate) {
			return a.ApplicationDate.After(b.ApplicationDate)
		}
	case SortByRating:
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
	default:
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	}
	return a.ID < b.ID
}

func fieldValue(c *Candidate, field string) string {
	switch field {
	case "name":
		return c.Name
	case "email":
		return c.Email
	case "phone":
		return c.Phone
	case "applied_role":
		return c.AppliedRole
	case "stage":
		return c.Stage
	case "status":
		return c.Status
	case "experience":
		return c.Experience
	case "location":
		if c.Location != nil {
			return *c.Location
		}
	}
	return ""
}
