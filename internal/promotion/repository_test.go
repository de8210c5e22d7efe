package promotion

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPromoMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func promoColumns() []string {
	return []string{"id", "code", "name", "description", "type", "status", "rewards", "conditions",
		"valid_from", "valid_to", "usage_limit", "usage_count", "created_at", "updated_at"}
}

func TestCreate_RoundTripsJSONColumns(t *testing.T) {
	repo, mock, close := setupPromoMock(t)
	defer close()

	validFrom := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	maxReward := 5.0

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO promotions")).
		WithArgs("WELCOME10", "Welcome", "", TypeFixedCredits, StatusActive,
			[]byte(`{"value":10,"max_reward_amount":5}`),
			[]byte(`{"min_amount":20}`),
			validFrom, nil, nil).
		WillReturnRows(sqlmock.NewRows(promoColumns()).
			AddRow(7, "WELCOME10", "Welcome", "", "FIXED_CREDITS", "active",
				[]byte(`{"value":10,"max_reward_amount":5}`),
				[]byte(`{"min_amount":20}`),
				validFrom, nil, nil, 0, time.Now(), time.Now()))

	minAmount := 20.0
	created, err := repo.Create(context.Background(), &Promotion{
		Code:       "WELCOME10",
		Name:       "Welcome",
		Type:       TypeFixedCredits,
		Status:     StatusActive,
		Rewards:    Rewards{Value: 10, MaxRewardAmount: &maxReward},
		Conditions: Conditions{MinAmount: &minAmount},
		ValidFrom:  validFrom,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, created.ID)
	assert.Equal(t, 10.0, created.Rewards.Value)
	require.NotNil(t, created.Rewards.MaxRewardAmount)
	assert.Equal(t, 5.0, *created.Rewards.MaxRewardAmount)
	require.NotNil(t, created.Conditions.MinAmount)
	assert.Equal(t, 20.0, *created.Conditions.MinAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
