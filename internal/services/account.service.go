package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"golang.org/x/crypto/bcrypt"

	"github.com/nimasrn/banking-ledger/internal/model"
	"github.com/nimasrn/banking-ledger/internal/repository"
	"github.com/nimasrn/banking-ledger/pkg/prom"
)

var (
	ErrDuplicateAccount        = errors.New("an account with this email or contact number already exists")
	ErrAccountNumbersExhausted = errors.New("could not allocate a free account number")
)

// accountNumberDigits is the width of generated account numbers; leading
// zeros are permitted.
const accountNumberDigits = 10

// maxAccountNumberDraws caps collision retries. With a 10^10 space a single
// retry is already unlikely; hitting the cap means the space is effectively
// exhausted (or the store is misbehaving), which deserves a hard error
// rather than an unbounded loop.
const maxAccountNumberDraws = 10

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) (*model.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*model.Account, error)
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	Authenticate(ctx context.Context, accountNumber, password string) (*model.Account, error)
	List(ctx context.Context, f model.AccountFilter) ([]*model.Account, error)
	GetBalance(ctx context.Context, accountNumber string) (float64, error)
	Credit(ctx context.Context, accountNumber string, amount float64) error
	Debit(ctx context.Context, accountNumber string, amount float64) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type AccountService struct {
	accountRepo       AccountRepository
	minOpeningBalance float64
}

func NewAccountService(accountRepo AccountRepository, minOpeningBalance float64) *AccountService {
	return &AccountService{
		accountRepo:       accountRepo,
		minOpeningBalance: minOpeningBalance,
	}
}

// Register validates the request, allocates a unique account number, hashes
// the credential and persists the account. The opening balance is floored
// at the configured minimum, matching the original teller behavior.
func (s *AccountService) Register(ctx context.Context, p model.AccountCreateRequest) (*model.Account, error) {
	if err := p.Validate(); err != nil {
		prom.IncOperation("register", "invalid")
		return nil, err
	}

	openingBalance := p.OpeningBalance
	if openingBalance < s.minOpeningBalance {
		openingBalance = s.minOpeningBalance
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		prom.IncOperation("register", "error")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	accountNumber, err := s.generateAccountNumber(ctx)
	if err != nil {
		prom.IncOperation("register", "error")
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		account := &model.Account{
			Name:          p.Name,
			AccountNumber: accountNumber,
			DateOfBirth:   p.DateOfBirth,
			City:          p.City,
			Address:       p.Address,
			PasswordHash:  string(hash),
			ContactNumber: p.ContactNumber,
			Email:         p.Email,
			Balance:       openingBalance,
			Active:        true,
		}

		created, err := s.accountRepo.Create(ctx, account)
		if err == nil {
			prom.IncOperation("register", "ok")
			return created, nil
		}

		if errors.Is(err, repository.ErrDuplicateAccount) {
			// The unique violation can come from the account number when a
			// concurrent insert landed between probe and commit. In that case
			// the number now exists, so redraw once; otherwise it was the
			// email or contact number.
			taken, probeErr := s.accountRepo.ExistsByAccountNumber(ctx, accountNumber)
			if probeErr == nil && taken && attempt == 0 {
				accountNumber, err = s.generateAccountNumber(ctx)
				if err != nil {
					prom.IncOperation("register", "error")
					return nil, err
				}
				continue
			}
			prom.IncOperation("register", "duplicate")
			return nil, ErrDuplicateAccount
		}

		prom.IncOperation("register", "error")
		return nil, fmt.Errorf("create account: %w", err)
	}
}

// ListAccounts returns every account for the operator's listing view.
func (s *AccountService) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.accountRepo.List(ctx, model.AccountFilter{})
}

// generateAccountNumber draws uniformly random 10-digit strings until one is
// unused. Draws are capped; the insert's unique constraint still backstops
// the window between probe and commit.
func (s *AccountService) generateAccountNumber(ctx context.Context) (string, error) {
	for i := 0; i < maxAccountNumberDraws; i++ {
		candidate := randomDigits(accountNumberDigits)

		exists, err := s.accountRepo.ExistsByAccountNumber(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe account number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrAccountNumbersExhausted
}

func randomDigits(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}
