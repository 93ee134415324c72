package models

import "time"

// Contact is an address book entry owned by exactly one user.
type Contact struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName      string    `json:"first_name" gorm:"index;type:varchar(50);not null"`
	LastName       string    `json:"last_name" gorm:"index;type:varchar(50);not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Phone          string    `json:"phone" gorm:"type:varchar(20);not null"`
	Birthday       *Date     `json:"birthday" gorm:"type:date"`
	AdditionalInfo *string   `json:"additional_info"`
	OwnerID        string    `json:"owner_id" gorm:"index;type:varchar(36);not null"`
	Owner          *User     `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// ContactCreate is the request body for creating a contact.
type ContactCreate struct {
	FirstName      string  `json:"first_name" validate:"required,max=50"`
	LastName       string  `json:"last_name" validate:"required,max=50"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          string  `json:"phone" validate:"required,max=20"`
	Birthday       *Date   `json:"birthday" validate:"required"`
	AdditionalInfo *string `json:"additional_info"`
}

// ContactUpdate is the request body for a partial update. Nil fields are left
// untouched.
type ContactUpdate struct {
	FirstName      *string `json:"first_name" validate:"omitempty,max=50"`
	LastName       *string `json:"last_name" validate:"omitempty,max=50"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	Birthday       *Date   `json:"birthday"`
	AdditionalInfo *string `json:"additional_info"`
}

// Changes returns the column/value pairs present in the update.
func (u ContactUpdate) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if u.FirstName != nil {
		changes["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		changes["last_name"] = *u.LastName
	}
	if u.Email != nil {
		changes["email"] = *u.Email
	}
	if u.Phone != nil {
		changes["phone"] = *u.Phone
	}
	if u.Birthday != nil {
		changes["birthday"] = *u.Birthday
	}
	if u.AdditionalInfo != nil {
		changes["additional_info"] = *u.AdditionalInfo
	}
	return changes
}
