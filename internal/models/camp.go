package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	CampPlanned   = "planned"
	CampOngoing   = "ongoing"
	CampCompleted = "completed"
	CampCancelled = "cancelled"
)

type Camp struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CampDate     Date           `gorm:"type:date;not null;index" json:"camp_date"`
	Location     string         `gorm:"size:255;not null" json:"location"`
	LocationLink string         `gorm:"size:500" json:"location_link"`
	PhoneNumber  string         `gorm:"size:20" json:"phone_number"`
	Status       string         `gorm:"size:20;not null;default:planned;index" json:"status"`
	ConductedBy  string         `gorm:"size:50;index" json:"conducted_by"`
	AssignedTo   pq.StringArray `gorm:"type:text[]" json:"assigned_to"`
	CreatedBy    uint           `gorm:"index" json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	LastUpdated  time.Time      `gorm:"autoUpdateTime" json:"last_updated"`
}

type CampListItem struct {
	Camp
	ConductedByName string `json:"conducted_by_name"`
	CreatedByName   string `json:"created_by_name"`
}
