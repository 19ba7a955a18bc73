package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a client's rating of a lawyer. A lawyer may attach a single
// response; once RespondedAt is set the response is immutable.
type Review struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClientID uuid.UUID `json:"clientId" gorm:"type:uuid;not null;index"`
	Client   *User     `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	LawyerID uuid.UUID `json:"lawyerId" gorm:"type:uuid;not null;index"`
	Lawyer   *Lawyer   `json:"lawyer,omitempty" gorm:"foreignKey:LawyerID"`

	Rating    int    `json:"rating" gorm:"not null"` // 1..5
	Comment   string `json:"comment" gorm:"type:text"`
	IsVisible bool   `json:"isVisible" gorm:"not null;default:true;index"`

	LawyerResponse *string    `json:"lawyerResponse,omitempty" gorm:"type:text"`
	RespondedAt    *time.Time `json:"respondedAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
