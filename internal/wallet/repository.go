package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"courtslot/internal/db"
	"courtslot/internal/metrics"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidEntry        = errors.New("invalid ledger entry")

	// errIdempotencyRace surfaces when two transactions insert the same key at
	// once; the loser's transaction is already aborted and must be retried.
	errIdempotencyRace = errors.New("concurrent ledger entry with same idempotency key")
)

const pqUniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// ApplyEntry applies one balance change in its own transaction.
func (r *repository) ApplyEntry(ctx context.Context, params ApplyParams) (*ApplyResult, error) {
	var result *ApplyResult

	err := db.Transact(ctx, r.db, func(tx *sqlx.Tx) error {
		var txErr error
		result, txErr = r.ApplyEntryTx(ctx, tx, params)
		return txErr
	})

	if errors.Is(err, errIdempotencyRace) {
		// The competing transaction won; its entry is the result.
		entry, lookupErr := r.GetEntryByKey(ctx, params.IdempotencyKey)
		if lookupErr != nil {
			return nil, err
		}
		return &ApplyResult{Entry: entry, Replayed: true}, nil
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ApplyEntryTx applies one balance change inside a caller-owned transaction, so
// reservation and promotion state can commit or roll back together with the
// ledger append. Balance mutation and entry append always happen as a pair.
func (r *repository) ApplyEntryTx(ctx context.Context, tx *sqlx.Tx, params ApplyParams) (*ApplyResult, error) {
	if params.Credits <= 0 || params.IdempotencyKey == "" ||
		(params.Type != TypeCredit && params.Type != TypeDebit) {
		return nil, ErrInvalidEntry
	}

	// Replay: a key seen before returns the stored entry, no financial effect.
	var existing LedgerEntry
	err := tx.GetContext(ctx, &existing,
		`SELECT id, user_id, type, reason, credits, balance_after, idempotency_key, metadata, created_at
		 FROM wallet_ledger
		 WHERE idempotency_key = $1`,
		params.IdempotencyKey,
	)
	if err == nil {
		return &ApplyResult{Entry: &existing, Replayed: true}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var balance float64
	err = tx.GetContext(ctx, &balance,
		`SELECT credits_balance FROM users WHERE id = $1 FOR UPDATE`,
		params.UserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	credits := Round2(params.Credits)
	var newBalance float64
	switch params.Type {
	case TypeDebit:
		newBalance = Round2(balance - credits)
		if newBalance < 0 {
			return nil, ErrInsufficientCredits
		}
	case TypeCredit:
		newBalance = Round2(balance + credits)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET credits_balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, params.UserID,
	)
	if err != nil {
		return nil, err
	}

	var entry LedgerEntry
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallet_ledger (user_id, type, reason, credits, balance_after, idempotency_key, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, user_id, type, reason, credits, balance_after, idempotency_key, metadata, created_at`,
		params.UserID, params.Type, params.Reason, credits, newBalance, params.IdempotencyKey, params.Metadata,
	).StructScan(&entry)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, errIdempotencyRace
		}
		return nil, err
	}

	metrics.RecordLedgerEntry(string(entry.Type), entry.Reason)
	return &ApplyResult{Entry: &entry, Replayed: false}, nil
}

func (r *repository) GetBalance(ctx context.Context, userID int) (float64, error) {
	var balance float64
	err := r.db.GetContext(ctx, &balance,
		`SELECT credits_balance FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (r *repository) GetLedger(ctx context.Context, userID int, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entries []LedgerEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, type, reason, credits, balance_after, idempotency_key, metadata, created_at
		FROM wallet_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repository) GetEntryByKey(ctx context.Context, key string) (*LedgerEntry, error) {
	var entry LedgerEntry
	err := r.db.GetContext(ctx, &entry,
		`SELECT id, user_id, type, reason, credits, balance_after, idempotency_key, metadata, created_at
		 FROM wallet_ledger
		 WHERE idempotency_key = $1`,
		key,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
