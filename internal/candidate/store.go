package candidate

import "context"

// StatusUpdate carries the independently optional fields of a status patch.
// A nil field is left untouched.
type StatusUpdate struct {
	Status *string  `json:"status,omitempty"`
	Stage  *string  `json:"stage,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u StatusUpdate) Empty() bool {
	return u.Status == nil && u.Stage == nil && u.Rating == nil
}

// Store persists candidates. Implementations must be safe for concurrent use.
type Store interface {
	// List returns every candidate ordered by id.
	List(ctx context.Context) ([]Candidate, error)
	// Find returns the candidates matching q in q's order.
	Find(ctx context.Context, q Query) ([]Candidate, error)
	// Get returns ErrNotFound when id is unknown.
	Get(ctx context.Context, id int64) (*Candidate, error)
	// Create inserts c and returns it with its assigned id. A duplicate email
	// yields ErrConflict.
	Create(ctx context.Context, c Candidate) (*Candidate, error)
	// UpdateStatus applies u and returns the updated row.
	UpdateStatus(ctx context.Context, id int64, u StatusUpdate) (*Candidate, error)
	// InsertBatch inserts all of cs or none of them.
	InsertBatch(ctx context.Context, cs []Candidate) (int, error)
	// Reset deletes every candidate and inserts cs in one step.
	Reset(ctx context.Context, cs []Candidate) (int, error)
	Close()
}
