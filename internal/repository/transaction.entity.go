package repository

import (
	"time"

	"github.com/nimasrn/banking-ledger/internal/model"
)

type TransactionEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	AccountNumber string    `db:"account_number" gorm:"column:account_number;not null;index"`
	Type          string    `db:"type"           gorm:"column:type;not null"`
	Amount        float64   `db:"amount"         gorm:"column:amount;not null"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:            m.ID,
		AccountNumber: m.AccountNumber,
		Type:          string(m.Type),
		Amount:        m.Amount,
		CreatedAt:     m.CreatedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:            e.ID,
		AccountNumber: e.AccountNumber,
		Type:          model.TransactionType(e.Type),
		Amount:        e.Amount,
		CreatedAt:     e.CreatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
