package models

import "time"

type ServiceStatus string

const (
	ServiceApproved ServiceStatus = "approved"
	ServiceRejected ServiceStatus = "rejected"
	ServicePending  ServiceStatus = "pending"
)

func (s ServiceStatus) Valid() bool {
	switch s {
	case ServiceApproved, ServiceRejected, ServicePending:
		return true
	}
	return false
}

// ClientService is a client establishment.
type ClientService struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	EstablishmentName string              `gorm:"size:200;not null" json:"establishment_name"`
	EmployerName      string              `gorm:"size:150" json:"employer_name"`
	EmailID           string              `gorm:"column:email_id;size:150" json:"email_id"`
	MobileNumber      string              `gorm:"size:20;index" json:"mobile_number"`
	CreatedBy         uint                `gorm:"index" json:"created_by"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Services          []ClientServiceItem `gorm:"foreignKey:ClientServiceID;constraint:OnDelete:CASCADE" json:"services,omitempty"`
}

type ClientServiceListItem struct {
	ClientService
	ServiceCount int64 `json:"service_count"`
}

type ClientServiceItem struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	ClientServiceID uint               `gorm:"index;not null" json:"client_service_id"`
	ServiceName     string             `gorm:"size:150;not null" json:"service_name"`
	ServiceStatus   ServiceStatus      `gorm:"size:20;not null;default:pending" json:"service_status"`
	Remarks         string             `gorm:"type:text" json:"remarks"`
	CreatedBy       uint               `gorm:"index" json:"created_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Documents       []ServicesDocument `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"-"`
	DocumentCount   int64              `gorm:"->;-:migration" json:"document_count"`
}
