package candidate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at start-up. Every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id                 BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL,
	email              TEXT NOT NULL UNIQUE,
	phone              TEXT NOT NULL,
	location           TEXT,
	applied_role       TEXT NOT NULL,
	experience         TEXT NOT NULL,
	application_date   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	status             TEXT NOT NULL DEFAULT 'Pending',
	stage              TEXT NOT NULL DEFAULT 'Screening',
	rating             DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (rating >= 0 AND rating <= 5),
	attachments        INTEGER NOT NULL DEFAULT 0,
	summary            TEXT,
	photo_url          TEXT,
	skills             TEXT,
	education          TEXT,
	experience_history TEXT,
	projects           TEXT,
	urls               TEXT
);
CREATE INDEX IF NOT EXISTS candidates_name_idx ON candidates (name);
CREATE INDEX IF NOT EXISTS candidates_application_date_idx ON candidates (application_date);
`

const uniqueViolation = "23505"

const insertSQL = `
	INSERT INTO candidates (
		name, email, phone, location, applied_role, experience,
		application_date, status, stage, rating, attachments,
		summary, photo_url, skills, education, experience_history, projects, urls
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING id`

// PostgresStore is the production Store backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps pool. The caller keeps ownership of the pool until
// Close is called.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the candidates table and its indexes if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensureSchema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Candidate, error) {
	query := `SELECT ` + strings.Join(columns, ", ") + ` FROM candidates ORDER BY id`
	return s.query(ctx, "list", query)
}

func (s *PostgresStore) Find(ctx context.Context, q Query) ([]Candidate, error) {
	query, args := q.SQL()
	return s.query(ctx, "find", query, args...)
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Candidate, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+strings.Join(columns, ", ")+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Create(ctx context.Context, c Candidate) (*Candidate, error) {
	if err := s.pool.QueryRow(ctx, insertSQL, insertArgs(&c)...).Scan(&c.ID); err != nil {
		return nil, classify("create candidate", err)
	}
	return &c, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, u StatusUpdate) (*Candidate, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE candidates
		 SET status = COALESCE($1, status),
		     stage  = COALESCE($2, stage),
		     rating = COALESCE($3, rating)
		 WHERE id = $4
		 RETURNING `+strings.Join(columns, ", "),
		u.Status, u.Stage, u.Rating, id,
	)
	c, err := scanCandidate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) InsertBatch(ctx context.Context, cs []Candidate) (int, error) {
	return s.inTx(ctx, "insert batch", false, cs)
}

func (s *PostgresStore) Reset(ctx context.Context, cs []Candidate) (int, error) {
	return s.inTx(ctx, "reset", true, cs)
}

func (s *PostgresStore) Close() { s.pool.Close() }

// inTx inserts cs in a single transaction, optionally clearing the table
// first. Any failure rolls the whole batch back.
func (s *PostgresStore) inTx(ctx context.Context, op string, wipe bool, cs []Candidate) (n int, err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s begin: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if wipe {
		if _, err = tx.Exec(ctx, `DELETE FROM candidates`); err != nil {
			return 0, fmt.Errorf("%s delete: %w", op, err)
		}
	}

	batch := &pgx.Batch{}
	for i := range cs {
		batch.Queue(insertSQL, insertArgs(&cs[i])...)
	}
	br := tx.SendBatch(ctx, batch)
	for range cs {
		var id int64
		if err = br.QueryRow().Scan(&id); err != nil {
			_ = br.Close()
			return 0, classify(op, err)
		}
	}
	if err = br.Close(); err != nil {
		return 0, classify(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s commit: %w", op, err)
	}
	return len(cs), nil
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]Candidate, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", op, err)
	}
	defer rows.Close()

	out := make([]Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return out, nil
}

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var (
		c                                           Candidate
		skills, education, history, projects, links *string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Location, &c.AppliedRole, &c.Experience,
		&c.ApplicationDate, &c.Status, &c.Stage, &c.Rating, &c.Attachments,
		&c.Summary, &c.PhotoURL, &skills, &education, &history, &projects, &links,
	)
	if err != nil {
		return nil, err
	}
	c.ApplicationDate = c.ApplicationDate.UTC()
	c.Skills = blobFrom(skills)
	c.Education = blobFrom(education)
	c.ExperienceHistory = blobFrom(history)
	c.Projects = blobFrom(projects)
	c.URLs = blobFrom(links)
	return &c, nil
}

func insertArgs(c *Candidate) []any {
	return []any{
		c.Name, c.Email, c.Phone, c.Location, c.AppliedRole, c.Experience,
		c.ApplicationDate, c.Status, c.Stage, c.Rating, c.Attachments,
		c.Summary, c.PhotoURL,
		c.Skills.ptr(), c.Education.ptr(), c.ExperienceHistory.ptr(), c.Projects.ptr(), c.URLs.ptr(),
	}
}

// classify maps a unique violation to ErrConflict and wraps everything else.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}
