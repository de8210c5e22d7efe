package promotion

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, p *Promotion) (*Promotion, error)
	GetByID(ctx context.Context, id int) (*Promotion, error)
	GetByCode(ctx context.Context, code string) (*Promotion, error)
	ListActive(ctx context.Context) ([]Promotion, error)
	SetStatus(ctx context.Context, id int, status string) error

	LockByIDTx(ctx context.Context, tx *sqlx.Tx, id int) (*Promotion, error)
	// IncrementUsageTx bumps usage_count, refusing to pass usage_limit.
	IncrementUsageTx(ctx context.Context, tx *sqlx.Tx, id int) error
	HasApplicationTx(ctx context.Context, tx *sqlx.Tx, promotionID, userID int) (bool, error)
	InsertApplicationTx(ctx context.Context, tx *sqlx.Tx, app *PromotionApplication) (*PromotionApplication, error)
}
