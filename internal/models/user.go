package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleEmployee UserRole = "employee"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EmployeeID string    `gorm:"size:50;uniqueIndex" json:"employee_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Contact    string    `gorm:"size:20" json:"contact"`
	Role       UserRole  `gorm:"size:20;not null;default:employee" json:"role"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
