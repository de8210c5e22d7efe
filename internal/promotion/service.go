package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"courtslot/internal/center"
	"courtslot/internal/db"
	"courtslot/internal/metrics"
	"courtslot/internal/wallet"
)

var (
	ErrPromotionInactive = errors.New("promotion is not active")
	ErrPromotionExpired  = errors.New("promotion has expired")
	ErrAlreadyUsed       = errors.New("promotion already used by this user")
	ErrMissingAmount     = errors.New("promotion requires an amount")
	ErrConditionsNotMet  = errors.New("promotion conditions not met")
	ErrNotBonusType      = errors.New("promotion does not grant wallet credits")
	ErrNotDiscountType   = errors.New("promotion is not a discount")
)

type Service interface {
	Apply(ctx context.Context, promotionID, userID int, req ApplyRequest) (*ApplyResult, error)
	ListActive(ctx context.Context) ([]Promotion, error)
	Create(ctx context.Context, req CreatePromotionRequest) (*Promotion, error)
	SetStatus(ctx context.Context, id int, status string) error
}

type service struct {
	database   *sqlx.DB
	promotions Repository
	walletRepo wallet.Repository
	now        func() time.Time
}

func NewService(database *sqlx.DB, promotions Repository, walletRepo wallet.Repository) Service {
	return &service{
		database:   database,
		promotions: promotions,
		walletRepo: walletRepo,
		now:        time.Now,
	}
}

// Apply grants a bonus promotion's reward to a user. The application record,
// the usage counter bump, and the wallet credit commit or roll back together.
func (s *service) Apply(ctx context.Context, promotionID, userID int, req ApplyRequest) (*ApplyResult, error) {
	var result *ApplyResult

	err := db.Transact(ctx, s.database, func(tx *sqlx.Tx) error {
		p, err := s.promotions.LockByIDTx(ctx, tx, promotionID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := CheckApplicable(p, now); err != nil {
			return err
		}

		if p.Type.IsOneTime() {
			used, err := s.promotions.HasApplicationTx(ctx, tx, p.ID, userID)
			if err != nil {
				return err
			}
			if used {
				return ErrAlreadyUsed
			}
		}

		if err := checkConditions(p.Conditions, req.Amount, now); err != nil {
			return err
		}

		reward, err := computeReward(p, req.Amount)
		if err != nil {
			return err
		}

		if _, err := s.promotions.InsertApplicationTx(ctx, tx, &PromotionApplication{
			PromotionID:    p.ID,
			UserID:         userID,
			CreditsAwarded: reward,
			Metadata:       req.Metadata,
		}); err != nil {
			return err
		}

		if err := s.promotions.IncrementUsageTx(ctx, tx, p.ID); err != nil {
			return err
		}

		applied, err := s.walletRepo.ApplyEntryTx(ctx, tx, wallet.ApplyParams{
			UserID:         userID,
			Type:           wallet.TypeCredit,
			Reason:         wallet.ReasonPromotion,
			Credits:        reward,
			IdempotencyKey: fmt.Sprintf("promo:%d:user:%d:%s", p.ID, userID, uuid.NewString()),
			Metadata:       wallet.Metadata{"promotion_id": p.ID},
		})
		if err != nil {
			return err
		}

		result = &ApplyResult{
			CreditsAwarded: reward,
			NewBalance:     applied.Entry.BalanceAfter,
			Promotion:      p,
		}
		return nil
	})

	if err != nil {
		metrics.RecordPromotionApplied("unknown", "error")
		return nil, err
	}

	metrics.RecordPromotionApplied(string(result.Promotion.Type), "ok")
	return result, nil
}

// CheckApplicable validates a promotion's status, validity window, and usage
// limit against now. Callers honoring a promotion in their own transaction
// (e.g. discount codes at payment time) run the same gate as Apply.
func CheckApplicable(p *Promotion, now time.Time) error {
	if p.Status != StatusActive {
		return ErrPromotionInactive
	}
	if now.Before(p.ValidFrom) {
		return ErrPromotionInactive
	}
	if p.ValidTo != nil && now.After(*p.ValidTo) {
		return ErrPromotionExpired
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return ErrUsageLimitExceeded
	}
	return nil
}

func checkConditions(c Conditions, amount *float64, now time.Time) error {
	if c.MinAmount != nil {
		if amount == nil {
			return ErrMissingAmount
		}
		if *amount < *c.MinAmount {
			return ErrConditionsNotMet
		}
	}
	if c.MaxAmount != nil && amount != nil && *amount > *c.MaxAmount {
		return ErrConditionsNotMet
	}

	if len(c.DaysOfWeek) > 0 {
		today := now.Weekday().String()
		matched := false
		for _, d := range c.DaysOfWeek {
			if strings.EqualFold(d, today) {
				matched = true
				break
			}
		}
		if !matched {
			return ErrConditionsNotMet
		}
	}

	if c.TimeOfDay != nil {
		startMin, err1 := center.ParseClock(c.TimeOfDay.Start)
		endMin, err2 := center.ParseClock(c.TimeOfDay.End)
		if err1 == nil && err2 == nil {
			nowMin := now.Hour()*60 + now.Minute()
			if nowMin < startMin || nowMin >= endMin {
				return ErrConditionsNotMet
			}
		}
	}

	return nil
}

func computeReward(p *Promotion, amount *float64) (float64, error) {
	var reward float64

	switch p.Type {
	case TypeFixedCredits, TypeSignupBonus, TypeReferralBonus:
		reward = p.Rewards.Value
	case TypePercentageBonus:
		if amount == nil {
			return 0, ErrMissingAmount
		}
		reward = *amount * p.Rewards.Value / 100
	default:
		return 0, ErrNotBonusType
	}

	if p.Rewards.MaxRewardAmount != nil && reward > *p.Rewards.MaxRewardAmount {
		reward = *p.Rewards.MaxRewardAmount
	}

	return wallet.Round2(reward), nil
}

// ComputeDiscount returns the final payable amount after applying a discount
// promotion to a reservation price.
func ComputeDiscount(p *Promotion, amount float64) (float64, error) {
	var discount float64

	switch p.Type {
	case TypeDiscountPercentage:
		discount = amount * p.Rewards.Value / 100
	case TypeDiscountFixed:
		discount = p.Rewards.Value
	default:
		return 0, ErrNotDiscountType
	}

	if p.Rewards.MaxRewardAmount != nil && discount > *p.Rewards.MaxRewardAmount {
		discount = *p.Rewards.MaxRewardAmount
	}

	final := amount - discount
	if final < 0 {
		final = 0
	}
	return wallet.Round2(final), nil
}

func (s *service) ListActive(ctx context.Context) ([]Promotion, error) {
	return s.promotions.ListActive(ctx)
}

func (s *service) Create(ctx context.Context, req CreatePromotionRequest) (*Promotion, error) {
	return s.promotions.Create(ctx, &Promotion{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Status:      StatusActive,
		Rewards:     req.Rewards,
		Conditions:  req.Conditions,
		ValidFrom:   req.ValidFrom,
		ValidTo:     req.ValidTo,
		UsageLimit:  req.UsageLimit,
	})
}

func (s *service) SetStatus(ctx context.Context, id int, status string) error {
	if status != StatusActive && status != StatusInactive {
		return ErrPromotionInactive
	}
	return s.promotions.SetStatus(ctx, id, status)
}
