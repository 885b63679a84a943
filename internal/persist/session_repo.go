package persist

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SessionRow struct {
	ID          uuid.UUID
	Name        string
	RulesDigest string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Ticks       uint64
	Score       int64
}

type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, row *SessionRow) error {
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`INSERT INTO sessions (id, name, rules_digest, started_at) VALUES (?, ?, ?, ?)`),
		row.ID.String(), row.Name, row.RulesDigest, row.StartedAt.UTC(),
	)
	return err
}

// Finish records the final tick count and score.
func (r *SessionRepo) Finish(ctx context.Context, id uuid.UUID, ticks uint64, score int64, at time.Time) error {
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE sessions SET finished_at = ?, ticks = ?, score = ? WHERE id = ?`),
		at.UTC(), int64(ticks), score, id.String(),
	)
	return err
}

// Load returns nil, nil when the session does not exist.
func (r *SessionRepo) Load(ctx context.Context, id uuid.UUID) (*SessionRow, error) {
	return r.scanOne(r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, name, rules_digest, started_at, finished_at, ticks, score
		 FROM sessions WHERE id = ?`), id.String()))
}

// Latest returns the most recently started session, or nil.
func (r *SessionRepo) Latest(ctx context.Context) (*SessionRow, error) {
	return r.scanOne(r.db.SQL.QueryRowContext(ctx,
		`SELECT id, name, rules_digest, started_at, finished_at, ticks, score
		 FROM sessions ORDER BY started_at DESC LIMIT 1`))
}

func (r *SessionRepo) List(ctx context.Context, limit int) ([]SessionRow, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(
		`SELECT id, name, rules_digest, started_at, finished_at, ticks, score
		 FROM sessions ORDER BY started_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		row, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *row)
	}
	return out, rows.Err()
}

func (r *SessionRepo) scanOne(s *sql.Row) (*SessionRow, error) {
	row, err := scanSession(s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return row, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*SessionRow, error) {
	var (
		row      SessionRow
		id       string
		finished sql.NullTime
		ticks    int64
	)
	if err := s.Scan(&id, &row.Name, &row.RulesDigest, &row.StartedAt, &finished, &ticks, &row.Score); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	row.ID = parsed
	row.Ticks = uint64(ticks)
	if finished.Valid {
		t := finished.Time
		row.FinishedAt = &t
	}
	return &row, nil
}
