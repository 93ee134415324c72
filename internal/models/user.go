package models

import "time"

// User represents a registered account that owns contacts.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password     string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	RefreshToken *string   `json:"-" gorm:"type:text"`                  // last issued, overwritten on login
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
