package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimasrn/banking-ledger/internal/model"
)

func TestTransactionRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Transaction{
		AccountNumber: "1234567890",
		Type:          model.TransactionTypeCredit,
		Amount:        500,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero(), "timestamp assigned at insert")
	assert.Equal(t, model.TransactionTypeCredit, created.Type)
}

func TestTransactionRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db.DB)
	ctx := context.Background()

	seed := []*model.Transaction{
		{AccountNumber: "1111111111", Type: model.TransactionTypeCredit, Amount: 500},
		{AccountNumber: "1111111111", Type: model.TransactionTypeDebit, Amount: 200},
		{AccountNumber: "2222222222", Type: model.TransactionTypeCredit, Amount: 900},
	}
	for _, txn := range seed {
		_, err := repo.Create(ctx, txn)
		require.NoError(t, err)
	}

	t.Run("filter by account", func(t *testing.T) {
		acct := "1111111111"
		rows, total, err := repo.List(ctx, model.TransactionFilter{AccountNumber: &acct})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, acct, row.AccountNumber)
		}
	})

	t.Run("filter by type", func(t *testing.T) {
		txType := model.TransactionTypeCredit
		rows, total, err := repo.List(ctx, model.TransactionFilter{Type: &txType})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, rows, 2)
	})

	t.Run("newest first with limit", func(t *testing.T) {
		acct := "1111111111"
		rows, total, err := repo.List(ctx, model.TransactionFilter{
			AccountNumber: &acct,
			Limit:         1,
			Desc:          true,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, rows, 1)
		assert.Equal(t, model.TransactionTypeDebit, rows[0].Type)
	})
}

func TestTransactionLedger_AtomicWithBalance(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db.DB)
	transactions := NewTransactionRepository(db.DB)
	ctx := context.Background()

	seedAccount(t, db, "1234567890", "a@example.com", "9876543210", 2000)

	// Balance change and ledger append inside one transaction: a failure
	// after the debit must roll the balance back too.
	err := db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := accounts.Debit(ctx, "1234567890", 500); err != nil {
			return err
		}
		return context.Canceled // simulated failure after the balance change
	})
	require.Error(t, err)

	balance, err := accounts.GetBalance(ctx, "1234567890")
	require.NoError(t, err)
	assert.InDelta(t, 2000, balance, 1e-9, "debit rolled back")

	acct := "1234567890"
	_, total, err := transactions.List(ctx, model.TransactionFilter{AccountNumber: &acct})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "no ledger entry for the aborted unit")
}
