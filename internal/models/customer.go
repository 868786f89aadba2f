package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CustomerName    string          `gorm:"size:150;not null" json:"customer_name"`
	PhoneNumber     string          `gorm:"size:20;index" json:"phone_number"`
	TypeOfWork      string          `gorm:"size:100" json:"type_of_work"`
	DiscussedAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discussed_amount"`
	PaidAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"paid_amount"`
	PendingAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"pending_amount"`
	ModeOfPayment   string          `gorm:"size:50" json:"mode_of_payment"`
	ReferredPerson  string          `gorm:"size:150;not null;default:''" json:"referred_person"`
	CreatedBy       uint            `gorm:"index" json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CustomerListItem is a customer row joined with display fields.
type CustomerListItem struct {
	Customer
	HasCard       bool   `json:"has_card"`
	HasClaims     bool   `json:"has_claims"`
	CreatedByName string `json:"created_by_name"`
}
