package models

import "time"

// ServicesDocument is a file uploaded for a client service item.
type ServicesDocument struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ServiceID   uint      `gorm:"index;not null" json:"service_id"`
	DocumentURL string    `gorm:"size:1000;not null" json:"document_url"`
	FileKey     string    `gorm:"size:500" json:"file_key"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	FileSize    int64     `json:"file_size"`
	MimeType    string    `gorm:"size:150" json:"mime_type"`
	UserID      uint      `gorm:"index" json:"user_id"`
	CreatedBy   string    `gorm:"size:100" json:"created_by"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
