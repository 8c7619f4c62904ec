package repository

import (
	"time"

	"github.com/nimasrn/banking-ledger/internal/model"
)

type AccountEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	Name          string    `db:"name"           gorm:"column:name;not null"`
	AccountNumber string    `db:"account_number" gorm:"column:account_number;not null;unique"`
	DateOfBirth   string    `db:"dob"            gorm:"column:dob;not null"`
	City          string    `db:"city"           gorm:"column:city;not null"`
	PasswordHash  string    `db:"password_hash"  gorm:"column:password_hash;not null"`
	Balance       float64   `db:"balance"        gorm:"column:balance;not null;default:2000"`
	ContactNumber string    `db:"contact_number" gorm:"column:contact_number;not null;unique"`
	Email         string    `db:"email"          gorm:"column:email;not null;unique"`
	Address       string    `db:"address"        gorm:"column:address;not null"`
	Active        bool      `db:"active"         gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (AccountEntity) TableName() string {
	return "accounts"
}

func toAccountEntity(m *model.Account) *AccountEntity {
	if m == nil {
		return nil
	}
	return &AccountEntity{
		ID:            m.ID,
		Name:          m.Name,
		AccountNumber: m.AccountNumber,
		DateOfBirth:   m.DateOfBirth,
		City:          m.City,
		PasswordHash:  m.PasswordHash,
		Balance:       m.Balance,
		ContactNumber: m.ContactNumber,
		Email:         m.Email,
		Address:       m.Address,
		Active:        m.Active,
		CreatedAt:     m.CreatedAt,
	}
}

func toAccountModel(e *AccountEntity) *model.Account {
	if e == nil {
		return nil
	}
	return &model.Account{
		ID:            e.ID,
		Name:          e.Name,
		AccountNumber: e.AccountNumber,
		DateOfBirth:   e.DateOfBirth,
		City:          e.City,
		PasswordHash:  e.PasswordHash,
		Balance:       e.Balance,
		ContactNumber: e.ContactNumber,
		Email:         e.Email,
		Address:       e.Address,
		Active:        e.Active,
		CreatedAt:     e.CreatedAt,
	}
}

func toAccountModels(entities []*AccountEntity) []*model.Account {
	if entities == nil {
		return nil
	}
	models := make([]*model.Account, len(entities))
	for i, e := range entities {
		models[i] = toAccountModel(e)
	}
	return models
}
