package model

import "time"

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Transaction is one immutable ledger entry. Entries are only ever created,
// in the same database transaction as the balance change they describe.
type Transaction struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"account_number"` // weak reference, no FK cascade
	Type          TransactionType `json:"type"`
	Amount        float64         `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

// TransactionFilter controls ledger listing.
type TransactionFilter struct {
	AccountNumber *string
	Type          *TransactionType
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
	Desc          bool
}
