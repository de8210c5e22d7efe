package wallet

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

func setupLedgerMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func ledgerColumns() []string {
	return []string{"id", "user_id", "type", "reason", "credits", "balance_after", "idempotency_key", "metadata", "created_at"}
}

func TestApplyEntry_Debit(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_ledger WHERE idempotency_key = $1")).
		WithArgs("pay-1").
		WillReturnRows(sqlmock.NewRows(ledgerColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT credits_balance FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"credits_balance"}).AddRow(100.0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET credits_balance = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(85.0, 20).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallet_ledger (user_id, type, reason, credits, balance_after, idempotency_key, metadata)")).
		WithArgs(20, TypeDebit, ReasonReservationPayment, 15.0, 85.0, "pay-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(ledgerColumns()).
			AddRow(1, 20, "DEBIT", ReasonReservationPayment, 15.0, 85.0, "pay-1", []byte("{}"), time.Now()))
	mock.ExpectCommit()

	result, err := repo.ApplyEntry(ctx, ApplyParams{
		UserID:         20,
		Type:           TypeDebit,
		Reason:         ReasonReservationPayment,
		Credits:        15,
		IdempotencyKey: "pay-1",
	})

	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, 85.0, result.Entry.BalanceAfter)
	assert.Equal(t, -15.0, result.Entry.Signed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyEntry_InsufficientCredits(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_ledger WHERE idempotency_key = $1")).
		WithArgs("pay-2").
		WillReturnRows(sqlmock.NewRows(ledgerColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT credits_balance FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"credits_balance"}).AddRow(10.0))
	mock.ExpectRollback()

	_, err := repo.ApplyEntry(context.Background(), ApplyParams{
		UserID:         20,
		Type:           TypeDebit,
		Reason:         ReasonReservationPayment,
		Credits:        15,
		IdempotencyKey: "pay-2",
	})

	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyEntry_IdempotentReplay(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_ledger WHERE idempotency_key = $1")).
		WithArgs("pay-3").
		WillReturnRows(sqlmock.NewRows(ledgerColumns()).
			AddRow(9, 20, "DEBIT", ReasonReservationPayment, 15.0, 85.0, "pay-3", []byte("{}"), time.Now()))
	mock.ExpectCommit()

	result, err := repo.ApplyEntry(context.Background(), ApplyParams{
		UserID:         20,
		Type:           TypeDebit,
		Reason:         ReasonReservationPayment,
		Credits:        15,
		IdempotencyKey: "pay-3",
	})

	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, 9, result.Entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyEntry_UserNotFound(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_ledger WHERE idempotency_key = $1")).
		WithArgs("pay-4").
		WillReturnRows(sqlmock.NewRows(ledgerColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT credits_balance FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(999).
		WillReturnRows(sqlmock.NewRows([]string{"credits_balance"}))
	mock.ExpectRollback()

	_, err := repo.ApplyEntry(context.Background(), ApplyParams{
		UserID:         999,
		Type:           TypeCredit,
		Reason:         ReasonTopUp,
		Credits:        5,
		IdempotencyKey: "pay-4",
	})

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyEntry_RejectsInvalidParams(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := repo.ApplyEntry(context.Background(), ApplyParams{
		UserID:         20,
		Type:           TypeCredit,
		Reason:         ReasonTopUp,
		Credits:        -5,
		IdempotencyKey: "k",
	})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = repo.ApplyEntry(context.Background(), ApplyParams{
		UserID:  20,
		Type:    TypeCredit,
		Reason:  ReasonTopUp,
		Credits: 5,
	})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestGetLedger(t *testing.T) {
	repo, mock, close := setupLedgerMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_ledger WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3")).
		WithArgs(20, 50, 0).
		WillReturnRows(sqlmock.NewRows(ledgerColumns()).
			AddRow(2, 20, "DEBIT", ReasonReservationPayment, 15.0, 85.0, "pay-1", []byte("{}"), time.Now()).
			AddRow(1, 20, "CREDIT", ReasonTopUp, 100.0, 100.0, "topup-1", []byte("{}"), time.Now()))

	entries, err := repo.GetLedger(context.Background(), 20, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Running signed sum over the (reversed) history equals the newest balance_after.
	sum := 0.0
	for i := len(entries) - 1; i >= 0; i-- {
		sum += entries[i].Signed()
	}
	assert.Equal(t, entries[0].BalanceAfter, sum)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.0, Round2(10.004))
	assert.Equal(t, 10.01, Round2(10.006))
	assert.Equal(t, 0.1, Round2(0.1))
	assert.Equal(t, -2.5, Round2(-2.499999))
}
