package promotion

import (
	"encoding/json"
	"errors"
	"time"

	"courtslot/internal/wallet"
)

type PromotionType string

const (
	TypeFixedCredits       PromotionType = "FIXED_CREDITS"
	TypePercentageBonus    PromotionType = "PERCENTAGE_BONUS"
	TypeDiscountPercentage PromotionType = "DISCOUNT_PERCENTAGE"
	TypeDiscountFixed      PromotionType = "DISCOUNT_FIXED"
	TypeSignupBonus        PromotionType = "SIGNUP_BONUS"
	TypeReferralBonus      PromotionType = "REFERRAL_BONUS"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// IsOneTime reports whether the type may be applied at most once per user.
func (t PromotionType) IsOneTime() bool {
	return t == TypeSignupBonus || t == TypeReferralBonus
}

// IsDiscount reports whether the type reduces a payment amount instead of
// crediting the wallet.
func (t PromotionType) IsDiscount() bool {
	return t == TypeDiscountPercentage || t == TypeDiscountFixed
}

// Rewards describes what the promotion grants. For percentage types Value is
// the percentage, for fixed types it is the credit amount.
type Rewards struct {
	Type            string   `json:"type,omitempty"`
	Value           float64  `json:"value"`
	MaxRewardAmount *float64 `json:"max_reward_amount,omitempty"`
}

// Conditions restrict when a promotion is applicable. Zero-value fields apply
// no restriction.
type Conditions struct {
	MinAmount  *float64 `json:"min_amount,omitempty"`
	MaxAmount  *float64 `json:"max_amount,omitempty"`
	DaysOfWeek []string `json:"days_of_week,omitempty"`
	TimeOfDay  *Window  `json:"time_of_day,omitempty"`
}

// Window is an inclusive-start exclusive-end daily time window in "HH:MM".
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Promotion struct {
	ID          int           `db:"id" json:"id"`
	Code        string        `db:"code" json:"code"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description,omitempty"`
	Type        PromotionType `db:"type" json:"type"`
	Status      string        `db:"status" json:"status"`
	Rewards     Rewards       `db:"rewards" json:"rewards"`
	Conditions  Conditions    `db:"conditions" json:"conditions"`
	ValidFrom   time.Time     `db:"valid_from" json:"valid_from"`
	ValidTo     *time.Time    `db:"valid_to" json:"valid_to,omitempty"`
	UsageLimit  *int          `db:"usage_limit" json:"usage_limit,omitempty"`
	UsageCount  int           `db:"usage_count" json:"usage_count"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

type PromotionApplication struct {
	ID             int             `db:"id" json:"id"`
	PromotionID    int             `db:"promotion_id" json:"promotion_id"`
	UserID         int             `db:"user_id" json:"user_id"`
	CreditsAwarded float64         `db:"credits_awarded" json:"credits_awarded"`
	Metadata       wallet.Metadata `db:"metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

type ApplyRequest struct {
	Amount   *float64               `json:"amount,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type ApplyResult struct {
	CreditsAwarded float64    `json:"credits_awarded"`
	NewBalance     float64    `json:"new_balance"`
	Promotion      *Promotion `json:"promotion"`
}

type CreatePromotionRequest struct {
	Code        string        `json:"code" binding:"required"`
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Type        PromotionType `json:"type" binding:"required,oneof=FIXED_CREDITS PERCENTAGE_BONUS DISCOUNT_PERCENTAGE DISCOUNT_FIXED SIGNUP_BONUS REFERRAL_BONUS"`
	Rewards     Rewards       `json:"rewards" binding:"required"`
	Conditions  Conditions    `json:"conditions"`
	ValidFrom   time.Time     `json:"valid_from" binding:"required"`
	ValidTo     *time.Time    `json:"valid_to"`
	UsageLimit  *int          `json:"usage_limit"`
}

// Rewards and Conditions implement sql.Scanner for the JSONB columns. They do
// not implement driver.Valuer (Rewards.Value is taken by the domain field), so
// the repository marshals them explicitly on writes.

func (r *Rewards) Scan(src interface{}) error { return scanJSON(src, r) }

func (c *Conditions) Scan(src interface{}) error { return scanJSON(src, c) }

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return errors.New("unsupported json column source type")
	}
}
