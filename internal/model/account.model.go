package model

import (
	"errors"
	"time"
)

type Account struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	AccountNumber string    `json:"account_number"`
	DateOfBirth   string    `json:"dob"` // YYYY-MM-DD
	City          string    `json:"city"`
	Address       string    `json:"address"`
	PasswordHash  string    `json:"-"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email"`
	Balance       float64   `json:"balance"`
	Active        bool      `json:"active"` // reserved for soft delete, never read back today
	CreatedAt     time.Time `json:"created_at"`
}

func (Account) TableName() string { return "accounts" }

// AccountCreateRequest is the input for registering a customer. Password is
// the raw credential; it is hashed before anything is persisted.
type AccountCreateRequest struct {
	Name           string
	DateOfBirth    string
	City           string
	Address        string
	Email          string
	ContactNumber  string
	Password       string
	OpeningBalance float64
}

var (
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidContactNumber = errors.New("invalid contact number")
	ErrInvalidPassword      = errors.New("password must contain at least 8 characters, including letters and numbers")
)

func (p AccountCreateRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.DateOfBirth == "" {
		return errors.New("date of birth is required")
	}
	if p.City == "" {
		return errors.New("city is required")
	}
	if p.Address == "" {
		return errors.New("address is required")
	}
	if !IsValidEmail(p.Email) {
		return ErrInvalidEmail
	}
	if !IsValidContactNumber(p.ContactNumber) {
		return ErrInvalidContactNumber
	}
	if !IsValidPassword(p.Password) {
		return ErrInvalidPassword
	}
	return nil
}

// AccountFilter controls administrative listing.
type AccountFilter struct {
	Limit  int // 0 means no limit
	Offset int
}
