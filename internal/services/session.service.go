package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nimasrn/banking-ledger/internal/model"
	"github.com/nimasrn/banking-ledger/internal/repository"
	"github.com/nimasrn/banking-ledger/pkg/prom"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAuthFailed          = errors.New("invalid account number or password")
)

const defaultStatementLimit = 20

// validAmount rejects zero, negative and non-finite amounts. NaN compares
// false against everything, so a plain `amount <= 0` guard lets it through
// and it would poison the stored balance.
func validAmount(amount float64) bool {
	return amount > 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
}

// Session is the authenticated context linking the terminal to one account.
// It lives in process memory only; there is no token or persistence.
type Session struct {
	ID            uuid.UUID
	AccountNumber string
	Name          string
	LoggedInAt    time.Time
}

// SessionService drives the dashboard: login, balance, credit, debit and
// the statement view.
type SessionService struct {
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
}

func NewSessionService(accountRepo AccountRepository, transactionRepo TransactionRepository) *SessionService {
	return &SessionService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// Login authenticates and opens a session. Failures are uniform: the caller
// learns nothing about whether the account exists.
func (s *SessionService) Login(ctx context.Context, accountNumber, password string) (*Session, error) {
	account, err := s.accountRepo.Authenticate(ctx, accountNumber, password)
	if err != nil {
		prom.IncOperation("login", "failed")
		if errors.Is(err, repository.ErrAuthFailed) {
			return nil, ErrAuthFailed
		}
		return nil, err
	}

	prom.IncOperation("login", "ok")
	return &Session{
		ID:            uuid.New(),
		AccountNumber: account.AccountNumber,
		Name:          account.Name,
		LoggedInAt:    time.Now(),
	}, nil
}

func (s *SessionService) ShowBalance(ctx context.Context, session *Session) (float64, error) {
	return s.accountRepo.GetBalance(ctx, session.AccountNumber)
}

// Credit increases the balance and appends the ledger entry in one database
// transaction: both land or neither does.
func (s *SessionService) Credit(ctx context.Context, session *Session, amount float64) (float64, error) {
	if !validAmount(amount) {
		prom.IncOperation("credit", "invalid")
		return 0, ErrInvalidAmount
	}

	var newBalance float64
	err := s.accountRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.Credit(ctx, session.AccountNumber, amount); err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}

		trx := &model.Transaction{
			AccountNumber: session.AccountNumber,
			Type:          model.TransactionTypeCredit,
			Amount:        amount,
		}
		if _, err := s.transactionRepo.Create(ctx, trx); err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}

		balance, err := s.accountRepo.GetBalance(ctx, session.AccountNumber)
		if err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if err != nil {
		prom.IncOperation("credit", "error")
		return 0, err
	}

	prom.IncOperation("credit", "ok")
	prom.ObserveAmount(string(model.TransactionTypeCredit), amount)
	return newBalance, nil
}

// Debit decreases the balance and appends the ledger entry in one database
// transaction. An insufficient balance aborts with no partial effect and no
// ledger entry.
func (s *SessionService) Debit(ctx context.Context, session *Session, amount float64) (float64, error) {
	if !validAmount(amount) {
		prom.IncOperation("debit", "invalid")
		return 0, ErrInvalidAmount
	}

	var newBalance float64
	err := s.accountRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.Debit(ctx, session.AccountNumber, amount); err != nil {
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return ErrInsufficientBalance
			}
			return fmt.Errorf("debit balance: %w", err)
		}

		trx := &model.Transaction{
			AccountNumber: session.AccountNumber,
			Type:          model.TransactionTypeDebit,
			Amount:        amount,
		}
		if _, err := s.transactionRepo.Create(ctx, trx); err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}

		balance, err := s.accountRepo.GetBalance(ctx, session.AccountNumber)
		if err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			prom.IncOperation("debit", "insufficient")
		} else {
			prom.IncOperation("debit", "error")
		}
		return 0, err
	}

	prom.IncOperation("debit", "ok")
	prom.ObserveAmount(string(model.TransactionTypeDebit), amount)
	return newBalance, nil
}

// Statement returns the session account's most recent ledger entries,
// newest first.
func (s *SessionService) Statement(ctx context.Context, session *Session, limit int) ([]*model.Transaction, error) {
	if limit <= 0 {
		limit = defaultStatementLimit
	}
	rows, _, err := s.transactionRepo.List(ctx, model.TransactionFilter{
		AccountNumber: &session.AccountNumber,
		Limit:         limit,
		Desc:          true,
	})
	return rows, err
}
