package models

import (
	"time"
)

type User struct {
	ID           string `gorm:"primaryKey"       json:"id"`
	FirstName    string `gorm:"not null"         json:"first_name"`
	LastName     string `gorm:"not null"         json:"last_name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null"         json:"-"`
	IsActive     bool   `gorm:"default:true"     json:"is_active"`
	IsStaff      bool   `gorm:"default:false"    json:"-"`
	IsSuperuser  bool   `gorm:"default:false"    json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
