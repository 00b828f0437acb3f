package candidate_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/candidate"
)

// seededStore returns a MemoryStore holding the demo dataset.
func seededStore(t *testing.T) *candidate.MemoryStore {
	t.Helper()
	cs, err := candidate.SeedCandidates(now)
	if err != nil {
		t.Fatalf("SeedCandidates() returned unexpected error: %v", err)
	}
	s := candidate.NewMemoryStore()
	if _, err := s.Reset(context.Background(), cs); err != nil {
		t.Fatalf("Reset() returned unexpected error: %v", err)
	}
	return s
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := candidate.NewMemoryStore()
	c, _ := validInputBuilt(t)

	created, err := s.Create(ctx, c)
	if err != nil {
		t.Fatalf("Create() returned unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("first id = %d, want 1", created.ID)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() returned unexpected error: %v", err)
	}
	if got.Email != c.Email {
		t.Errorf("Get().Email = %q, want %q", got.Email, c.Email)
	}

	if _, err := s.Create(ctx, c); !errors.Is(err, candidate.ErrConflict) {
		t.Errorf("Create() duplicate email error = %v, want ErrConflict", err)
	}
	if _, err := s.Get(ctx, 99); !errors.Is(err, candidate.ErrNotFound) {
		t.Errorf("Get(99) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_UpdateStatusPartial(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	before, _ := s.Get(ctx, 1)
	after, err := s.UpdateStatus(ctx, 1, candidate.StatusUpdate{Rating: floatPtr(1.5)})
	if err != nil {
		t.Fatalf("UpdateStatus() returned unexpected error: %v", err)
	}
	if after.Rating != 1.5 {
		t.Errorf("Rating = %v, want 1.5", after.Rating)
	}
	if after.Status != before.Status || after.Stage != before.Stage {
		t.Errorf("status/stage changed to %q/%q, want %q/%q", after.Status, after.Stage, before.Status, before.Stage)
	}

	if _, err := s.UpdateStatus(ctx, 42, candidate.StatusUpdate{Status: strPtr("Selected")}); !errors.Is(err, candidate.ErrNotFound) {
		t.Errorf("UpdateStatus(42) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_InsertBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	before, _ := s.List(ctx)

	fresh, _ := validInputBuilt(t)
	dup := before[0]
	if _, err := s.InsertBatch(ctx, []candidate.Candidate{fresh, dup}); !errors.Is(err, candidate.ErrConflict) {
		t.Fatalf("InsertBatch() error = %v, want ErrConflict", err)
	}
	after, _ := s.List(ctx)
	if len(after) != len(before) {
		t.Errorf("store size = %d after failed batch, want %d", len(after), len(before))
	}

	if _, err := s.InsertBatch(ctx, []candidate.Candidate{fresh, fresh}); !errors.Is(err, candidate.ErrConflict) {
		t.Errorf("InsertBatch() with in-batch duplicate error = %v, want ErrConflict", err)
	}

	n, err := s.InsertBatch(ctx, []candidate.Candidate{fresh})
	if err != nil || n != 1 {
		t.Fatalf("InsertBatch() = %d, %v, want 1, nil", n, err)
	}
}

func TestMemoryStore_FindOrdering(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	byRating, _ := candidate.ParseQuery(candidate.FilterParams{SortBy: "rating"}, "")
	cs, err := s.Find(ctx, byRating)
	if err != nil {
		t.Fatalf("Find() returned unexpected error: %v", err)
	}
	if len(cs) != 6 {
		t.Fatalf("Find() returned %d candidates, want 6", len(cs))
	}
	for i := 1; i < len(cs); i++ {
		if cs[i].Rating > cs[i-1].Rating {
			t.Errorf("rating order broken at %d: %v after %v", i, cs[i].Rating, cs[i-1].Rating)
		}
	}

	byName, _ := candidate.ParseQuery(candidate.FilterParams{SortBy: "name"}, "")
	cs, _ = s.Find(ctx, byName)
	if !sort.SliceIsSorted(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name }) {
		t.Errorf("name order broken: %v", names(cs))
	}

	byDate, _ := candidate.ParseQuery(candidate.FilterParams{SortBy: "application_date"}, "")
	cs, _ = s.Find(ctx, byDate)
	for i := 1; i < len(cs); i++ {
		if cs[i].ApplicationDate.After(cs[i-1].ApplicationDate) {
			t.Errorf("date order broken at %d", i)
		}
	}
}

func TestMemoryStore_FindByMonth(t *testing.T) {
	ctx := context.Background()
	s := candidate.NewMemoryStore()

	dates := []time.Time{
		time.Date(2024, 11, 30, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		in := validInput()
		in.Email = string(rune('a'+i)) + "@example.com"
		in.ApplicationDate = timePtr(d)
		c, err := in.Build(now)
		if err != nil {
			t.Fatalf("Build() returned unexpected error: %v", err)
		}
		if _, err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}
	}

	q, _ := candidate.ParseQuery(candidate.FilterParams{MonthYear: "2024-12"}, "")
	cs, _ := s.Find(ctx, q)
	if len(cs) != 2 {
		t.Fatalf("Find(2024-12) returned %d candidates, want 2", len(cs))
	}
	for _, c := range cs {
		if c.ApplicationDate.Month() != time.December {
			t.Errorf("unexpected candidate applied on %v", c.ApplicationDate)
		}
	}
}

func TestMemoryStore_FindNameOrderIsByteWise(t *testing.T) {
	ctx := context.Background()
	s := candidate.NewMemoryStore()

	for i, name := range []string{"bob", "Zed", "alice", "Alice"} {
		in := validInput()
		in.Name = name
		in.Email = string(rune('a'+i)) + "@example.com"
		c, err := in.Build(now)
		if err != nil {
			t.Fatalf("Build() returned unexpected error: %v", err)
		}
		if _, err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}
	}

	q, _ := candidate.ParseQuery(candidate.FilterParams{SortBy: "name"}, "")
	cs, err := s.Find(ctx, q)
	if err != nil {
		t.Fatalf("Find() returned unexpected error: %v", err)
	}
	want := []string{"Alice", "Zed", "alice", "bob"}
	got := names(cs)
	if len(got) != len(want) {
		t.Fatalf("Find() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Find() = %v, want %v", got, want)
		}
	}

	query, _ := q.SQL()
	if !strings.Contains(query, `ORDER BY "name" COLLATE "C" ASC, "id" ASC`) {
		t.Errorf("SQL() = %s, want the C collation on name", query)
	}
}

func validInputBuilt(t *testing.T) (candidate.Candidate, candidate.Input) {
	t.Helper()
	in := validInput()
	in.Email = "new.person@example.com"
	c, err := in.Build(now)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	return c, in
}

func names(cs []candidate.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}
