package promotion

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPromotionNotFound  = errors.New("promotion not found")
	ErrUsageLimitExceeded = errors.New("promotion usage limit exceeded")
)

const promotionColumns = `id, code, name, description, type, status, rewards, conditions,
	valid_from, valid_to, usage_limit, usage_count, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Promotion) (*Promotion, error) {
	rewards, err := json.Marshal(p.Rewards)
	if err != nil {
		return nil, err
	}
	conditions, err := json.Marshal(p.Conditions)
	if err != nil {
		return nil, err
	}

	created := &Promotion{}
	err = r.db.QueryRowxContext(ctx, `
		INSERT INTO promotions (code, name, description, type, status, rewards, conditions, valid_from, valid_to, usage_limit, usage_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0)
		RETURNING `+promotionColumns+`
	`, p.Code, p.Name, p.Description, p.Type, p.Status, rewards, conditions, p.ValidFrom, p.ValidTo, p.UsageLimit).StructScan(created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Promotion, error) {
	p := &Promotion{}
	err := r.db.GetContext(ctx, p, `
		SELECT `+promotionColumns+` FROM promotions WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPromotionNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Promotion, error) {
	p := &Promotion{}
	err := r.db.GetContext(ctx, p, `
		SELECT `+promotionColumns+` FROM promotions WHERE code = $1
	`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPromotionNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Promotion, error) {
	promos := []Promotion{}
	err := r.db.SelectContext(ctx, &promos, `
		SELECT `+promotionColumns+`
		FROM promotions
		WHERE status = 'active'
		  AND valid_from <= NOW()
		  AND (valid_to IS NULL OR valid_to >= NOW())
		ORDER BY valid_from DESC
	`)
	return promos, err
}

func (r *repository) SetStatus(ctx context.Context, id int, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE promotions SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

func (r *repository) LockByIDTx(ctx context.Context, tx *sqlx.Tx, id int) (*Promotion, error) {
	p := &Promotion{}
	err := tx.GetContext(ctx, p, `
		SELECT `+promotionColumns+` FROM promotions WHERE id = $1 FOR UPDATE
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPromotionNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// IncrementUsageTx increments usage_count only while below usage_limit; zero
// rows affected means the limit was reached by a concurrent application.
func (r *repository) IncrementUsageTx(ctx context.Context, tx *sqlx.Tx, id int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE promotions
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1
		  AND (usage_limit IS NULL OR usage_count < usage_limit)
	`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUsageLimitExceeded
	}
	return nil
}

func (r *repository) HasApplicationTx(ctx context.Context, tx *sqlx.Tx, promotionID, userID int) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM promotion_applications WHERE promotion_id = $1 AND user_id = $2
		)
	`, promotionID, userID)
	return exists, err
}

func (r *repository) InsertApplicationTx(ctx context.Context, tx *sqlx.Tx, app *PromotionApplication) (*PromotionApplication, error) {
	created := &PromotionApplication{}
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO promotion_applications (promotion_id, user_id, credits_awarded, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, promotion_id, user_id, credits_awarded, metadata, created_at
	`, app.PromotionID, app.UserID, app.CreditsAwarded, app.Metadata).StructScan(created)
	if err != nil {
		return nil, err
	}
	return created, nil
}
