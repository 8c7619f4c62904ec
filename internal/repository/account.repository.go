package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nimasrn/banking-ledger/internal/model"
	"github.com/nimasrn/banking-ledger/pkg/pg"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateAccount    = errors.New("account with a unique field already exists")
	ErrAuthFailed          = errors.New("invalid account number or password")
	ErrConcurrentUpdate    = errors.New("concurrent update detected")
	ErrMaxRetriesExceeded  = errors.New("max retries exceeded")
)

// dummyHash is a bcrypt digest of a throwaway value. Authenticate compares
// against it when the account does not exist so that unknown accounts cost
// the same as wrong passwords and cannot be told apart by timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type AccountRepository struct {
	*pg.DB
}

func NewAccountRepository(db *pg.DB) *AccountRepository {
	return &AccountRepository{
		db,
	}
}

// Create persists a new account. Unique collisions on account_number,
// contact_number or email surface as ErrDuplicateAccount; the race between
// account-number generation and insert resolves here.
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	entity := toAccountEntity(account)
	entity.Active = true

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	return toAccountModel(entity), nil
}

func (r *AccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	var entity AccountEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("account_number = ?", accountNumber).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return toAccountModel(&entity), nil
}

// ExistsByAccountNumber is the probe used by account-number generation.
func (r *AccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&AccountEntity{}).
		Where("account_number = ?", accountNumber).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Authenticate matches the stored bcrypt digest. It returns ErrAuthFailed
// for both unknown accounts and wrong passwords, never revealing which.
func (r *AccountRepository) Authenticate(ctx context.Context, accountNumber, password string) (*model.Account, error) {
	var entity AccountEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("account_number = ?", accountNumber).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrAuthFailed
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(entity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthFailed
	}

	return toAccountModel(&entity), nil
}

// List returns accounts for administrative listing. A zero-limit filter
// returns everything; fine for a single operator, not for scale.
func (r *AccountRepository) List(ctx context.Context, f model.AccountFilter) ([]*model.Account, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&AccountEntity{}).Order("id ASC")

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var entities []*AccountEntity
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}

	return toAccountModels(entities), nil
}

func (r *AccountRepository) GetBalance(ctx context.Context, accountNumber string) (float64, error) {
	var entity AccountEntity
	err := r.Read(ctx).WithContext(ctx).
		Select("balance").
		Where("account_number = ?", accountNumber).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}

	return entity.Balance, nil
}

// Debit performs an atomic balance deduction with automatic retry. The
// balance never goes negative: a debit larger than the current balance
// fails with ErrInsufficientBalance and leaves the row untouched.
func (r *AccountRepository) Debit(ctx context.Context, accountNumber string, amount float64) error {
	const maxRetries = 3
	const baseDelay = 2 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := r.debitAttempt(ctx, accountNumber, amount)

		if err == nil {
			return nil
		}

		// Don't retry on permanent errors
		if errors.Is(err, ErrAccountNotFound) ||
			errors.Is(err, ErrInsufficientBalance) {
			return err
		}

		// Retry on transient errors
		if attempt < maxRetries {
			delay := baseDelay * time.Duration(1<<attempt) // 2ms, 4ms, 8ms
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
	}

	return fmt.Errorf("%w: failed after %d attempts", ErrMaxRetriesExceeded, maxRetries+1)
}

func (r *AccountRepository) debitAttempt(ctx context.Context, accountNumber string, amount float64) error {
	var entity AccountEntity

	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_number = ?", accountNumber).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if entity.Balance < amount {
		return ErrInsufficientBalance
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&AccountEntity{}).
		Where("account_number = ?", accountNumber).
		Update("balance", gorm.Expr("balance - ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}

	return nil
}

// Credit performs an atomic balance addition with automatic retry using
// SELECT FOR UPDATE.
func (r *AccountRepository) Credit(ctx context.Context, accountNumber string, amount float64) error {
	const maxRetries = 3
	const baseDelay = 2 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := r.creditAttempt(ctx, accountNumber, amount)

		if err == nil {
			return nil
		}

		if errors.Is(err, ErrAccountNotFound) {
			return err
		}

		if attempt < maxRetries {
			delay := baseDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
	}

	return fmt.Errorf("%w: failed after %d attempts", ErrMaxRetriesExceeded, maxRetries+1)
}

func (r *AccountRepository) creditAttempt(ctx context.Context, accountNumber string, amount float64) error {
	var entity AccountEntity

	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_number = ?", accountNumber).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&AccountEntity{}).
		Where("account_number = ?", accountNumber).
		Update("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// isUniqueViolation matches unique-constraint failures for both the
// production postgres driver and the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
