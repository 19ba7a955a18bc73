package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity record behind both clients and lawyers.
// ClerkID is the external identity-provider subject and is never serialized.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClerkID      string    `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	FirstName    string    `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName     string    `json:"lastName" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;index"`
	Phone        *string   `json:"phone,omitempty" gorm:"type:varchar(30)"`
	ProfileImage *string   `json:"profileImage,omitempty" gorm:"type:varchar(500)"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
