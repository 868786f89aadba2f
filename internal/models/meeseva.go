package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Meeseva tracks an advance handed out for a service disbursement and how much
// of it has been spent.
type Meeseva struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:150;not null" json:"name"`
	AdvanceAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"advance_amount"`
	UsedAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"used_amount"`
	Comment       string          `gorm:"type:text" json:"comment"`
	CreatedBy     uint            `gorm:"index" json:"created_by"`
	UpdatedBy     *uint           `json:"updated_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Meeseva) TableName() string { return "meeseva" }

func (m Meeseva) Available() decimal.Decimal {
	return m.AdvanceAmount.Sub(m.UsedAmount)
}
