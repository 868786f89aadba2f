package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "Credit"
	TransactionDebit  TransactionType = "Debit"
)

// ParseTransactionType accepts any casing of credit/debit and returns the
// Title Case form.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit":
		return TransactionCredit, true
	case "debit":
		return TransactionDebit, true
	}
	return "", false
}

type FinancialTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Bank            string          `gorm:"size:100;not null;index" json:"bank"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Type            TransactionType `gorm:"size:10;not null;index" json:"type"`
	TransactionDate Date            `gorm:"type:date;not null;index" json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
