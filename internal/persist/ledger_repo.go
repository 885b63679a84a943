package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Ledger entry kinds.
const (
	KindSpawned   = "spawned"
	KindCollected = "collected"
	KindDeposited = "deposited"
	KindReclaimed = "reclaimed"
)

// LedgerEntry is one domain event row.
type LedgerEntry struct {
	SessionID uuid.UUID
	Tick      uint64
	Kind      string
	Category  string
	Entity    uint64
	Actor     uint64
	Amount    int // reward points for deposits
}

// Total aggregates ledger rows per kind and category.
type Total struct {
	Kind     string
	Category string
	Count    int64
	Amount   int64
}

type LedgerRepo struct {
	db *DB
}

func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Append writes a batch of entries in a single transaction.
func (r *LedgerRepo) Append(ctx context.Context, entries []LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.db.rebind(
		`INSERT INTO ledger (session_id, tick, kind, category, entity, actor, amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("ledger prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.SessionID.String(), int64(e.Tick), e.Kind, e.Category, int64(e.Entity), int64(e.Actor), e.Amount,
		); err != nil {
			return fmt.Errorf("ledger insert: %w", err)
		}
	}
	return tx.Commit()
}

// Totals returns per kind and category aggregates for a session, ordered by
// kind then category.
func (r *LedgerRepo) Totals(ctx context.Context, sessionID uuid.UUID) ([]Total, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(
		`SELECT kind, category, COUNT(*), COALESCE(SUM(amount), 0)
		 FROM ledger WHERE session_id = ?
		 GROUP BY kind, category ORDER BY kind, category`), sessionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Total
	for rows.Next() {
		var t Total
		if err := rows.Scan(&t.Kind, &t.Category, &t.Count, &t.Amount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
