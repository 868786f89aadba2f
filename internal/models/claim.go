package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ClaimMarriageGift     = "Marriage gift"
	ClaimMaternityBenefit = "Maternity benefit"
	ClaimNaturalDeath     = "Natural Death"
	ClaimAccidentalDeath  = "Accidental death"
)

var ClaimTypes = []string{ClaimMarriageGift, ClaimMaternityBenefit, ClaimNaturalDeath, ClaimAccidentalDeath}

const (
	StateALO          = "ALO"
	StateNodalOfficer = "Nodal Officer"
	StateBoard        = "Board"
	StateInsurance    = "Insurance"
)

var ProcessStates = []string{StateALO, StateNodalOfficer, StateBoard, StateInsurance}

type Claim struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CardID          uint            `gorm:"index;not null" json:"card_id"`
	Card            *Card           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DiscussedAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discussed_amount"`
	PaidAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"paid_amount"`
	PendingAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"pending_amount"`
	TypeOfClaim     string          `gorm:"size:50;not null" json:"type_of_claim"`
	ProcessState    string          `gorm:"size:50;not null;default:ALO" json:"process_state"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ClaimListItem struct {
	Claim
	CustomerID     uint   `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	RegisterNumber string `json:"register_number"`
	CardHolderName string `json:"card_holder_name"`
}
