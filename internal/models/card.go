package models

import "time"

// Card belongs to exactly one customer; the unique index on customer_id keeps
// the relationship one-to-one.
type Card struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CustomerID     uint      `gorm:"uniqueIndex;not null" json:"customer_id"`
	Customer       *Customer `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RegisterNumber string    `gorm:"size:100" json:"register_number"`
	CardHolderName string    `gorm:"size:150" json:"card_holder_name"`
	AgentName      string    `gorm:"size:150" json:"agent_name"`
	AgentMobile    string    `gorm:"size:20" json:"agent_mobile"`
	CreatedBy      uint      `gorm:"index" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CardListItem struct {
	Card
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
	ClaimCount   int64  `json:"claim_count"`
}
