package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	ApplyEntry(ctx context.Context, params ApplyParams) (*ApplyResult, error)
	ApplyEntryTx(ctx context.Context, tx *sqlx.Tx, params ApplyParams) (*ApplyResult, error)
	GetBalance(ctx context.Context, userID int) (float64, error)
	GetEntryByKey(ctx context.Context, idempotencyKey string) (*LedgerEntry, error)
	GetLedger(ctx context.Context, userID int, limit, offset int) ([]LedgerEntry, error)
}
