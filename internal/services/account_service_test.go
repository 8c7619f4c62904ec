package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nimasrn/banking-ledger/internal/model"
	"github.com/nimasrn/banking-ledger/internal/repository"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	args := m.Called(ctx, accountNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Authenticate(ctx context.Context, accountNumber, password string) (*model.Account, error) {
	args := m.Called(ctx, accountNumber, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, f model.AccountFilter) ([]*model.Account, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetBalance(ctx context.Context, accountNumber string) (float64, error) {
	args := m.Called(ctx, accountNumber)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockAccountRepository) Credit(ctx context.Context, accountNumber string, amount float64) error {
	args := m.Called(ctx, accountNumber, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) Debit(ctx context.Context, accountNumber string, amount float64) error {
	args := m.Called(ctx, accountNumber, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Transaction), args.Get(1).(int64), args.Error(2)
}

func validRequest() model.AccountCreateRequest {
	return model.AccountCreateRequest{
		Name:           "Asha Rao",
		DateOfBirth:    "1990-04-12",
		City:           "Pune",
		Address:        "12 MG Road",
		Email:          "asha@example.com",
		ContactNumber:  "9876543210",
		Password:       "abc123def",
		OpeningBalance: 5000,
	}
}

var accountNumberPattern = regexp.MustCompile(`^\d{10}$`)

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockAccountRepository)
		service := NewAccountService(repo, 2000)

		var captured *model.Account
		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*model.Account")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*model.Account)
			}).
			Return(&model.Account{ID: 1, AccountNumber: "1234567890"}, nil)

		created, err := service.Register(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)

		require.NotNil(t, captured)
		assert.Regexp(t, accountNumberPattern, captured.AccountNumber)
		assert.InDelta(t, 5000, captured.Balance, 1e-9)
		assert.True(t, captured.Active)
		assert.NotEqual(t, "abc123def", captured.PasswordHash, "raw password never persisted")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(captured.PasswordHash), []byte("abc123def")))

		repo.AssertExpectations(t)
	})

	t.Run("opening balance floored at the minimum", func(t *testing.T) {
		repo := new(MockAccountRepository)
		service := NewAccountService(repo, 2000)

		var captured *model.Account
		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*model.Account")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*model.Account)
			}).
			Return(&model.Account{ID: 2}, nil)

		req := validRequest()
		req.OpeningBalance = 500

		_, err := service.Register(ctx, req)
		require.NoError(t, err)
		assert.InDelta(t, 2000, captured.Balance, 1e-9)
	})

	t.Run("invalid email rejected before any storage call", func(t *testing.T) {
		repo := new(MockAccountRepository)
		service := NewAccountService(repo, 2000)

		req := validRequest()
		req.Email = "not-an-email"

		_, err := service.Register(ctx, req)
		assert.ErrorIs(t, err, model.ErrInvalidEmail)
		repo.AssertNotCalled(t, "Create")
		repo.AssertNotCalled(t, "ExistsByAccountNumber")
	})

	t.Run("collision retried with a fresh draw", func(t *testing.T) {
		repo := new(MockAccountRepository)
		service := NewAccountService(repo, 2000)

		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*model.Account")).
			Return(&model.Account{ID: 3}, nil)

		_, err := service.Register(ctx, validRequest())
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "ExistsByAccountNumber", 2)
	})

	t.Run("draw cap exhausted", func(t *testing.T) {
		repo := new(MockAccountRepository)
		service := NewAccountService(repo, 2000)

		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(true, nil)

		_, err := service.Register(ctx, validRequest())
		assert.ErrorIs(t, err, ErrAccountNumbersExhausted)
		repo.AssertNumberOfCalls(t, "ExistsByAccountNumber", maxAccountNumberDraws)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("duplicate unique field surfaced", func(t *testing.T) {
		repo := new(MockAccountRepository)
		service := NewAccountService(repo, 2000)

		// Draw probe, then the recheck after the failed insert: the number
		// was never taken, so the duplicate is the email or contact number.
		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Twice()
		repo.On("Create", ctx, mock.AnythingOfType("*model.Account")).
			Return(nil, repository.ErrDuplicateAccount)

		_, err := service.Register(ctx, validRequest())
		assert.ErrorIs(t, err, ErrDuplicateAccount)
		repo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("insert race on the account number redraws once", func(t *testing.T) {
		repo := new(MockAccountRepository)
		service := NewAccountService(repo, 2000)

		var first, second string
		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*model.Account")).
			Run(func(args mock.Arguments) {
				first = args.Get(1).(*model.Account).AccountNumber
			}).
			Return(nil, repository.ErrDuplicateAccount).Once()
		// A concurrent insert claimed the number between probe and commit.
		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*model.Account")).
			Run(func(args mock.Arguments) {
				second = args.Get(1).(*model.Account).AccountNumber
			}).
			Return(&model.Account{ID: 4}, nil).Once()

		created, err := service.Register(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(4), created.ID)
		assert.NotEqual(t, first, second)
		repo.AssertExpectations(t)
	})

	t.Run("second duplicate after a redraw stops retrying", func(t *testing.T) {
		repo := new(MockAccountRepository)
		service := NewAccountService(repo, 2000)

		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*model.Account")).
			Return(nil, repository.ErrDuplicateAccount)
		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(false, nil)

		_, err := service.Register(ctx, validRequest())
		assert.ErrorIs(t, err, ErrDuplicateAccount)
		repo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("storage error wrapped", func(t *testing.T) {
		repo := new(MockAccountRepository)
		service := NewAccountService(repo, 2000)

		repo.On("ExistsByAccountNumber", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*model.Account")).
			Return(nil, errors.New("connection reset"))

		_, err := service.Register(ctx, validRequest())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateAccount)
	})
}

func TestAccountService_ListAccounts(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccountRepository)
	service := NewAccountService(repo, 2000)

	expected := []*model.Account{
		{AccountNumber: "1111111111", Name: "A"},
		{AccountNumber: "2222222222", Name: "B"},
	}
	repo.On("List", ctx, model.AccountFilter{}).Return(expected, nil)

	accounts, err := service.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, accounts)
}
