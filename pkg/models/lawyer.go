package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AvailabilitySlot is one entry in a lawyer's weekly availability sequence.
type AvailabilitySlot struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Lawyer extends a User with a service-provider profile. ClerkID mirrors the
// linked user's identity-provider subject for fast ownership checks.
type Lawyer struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	User    *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ClerkID string    `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`

	Specialization    string         `json:"specialization" gorm:"type:varchar(100)"`
	Bio               string         `json:"bio" gorm:"type:text"`
	Education         string         `json:"education" gorm:"type:varchar(255)"`
	BarNumber         string         `json:"barNumber" gorm:"type:varchar(50)"`
	YearsOfExperience int            `json:"yearsOfExperience" gorm:"not null;default:0"`
	HourlyRate        int64          `json:"hourlyRate" gorm:"not null;default:0"` // minor units
	Languages         datatypes.JSON `json:"languages,omitempty" gorm:"type:jsonb"`
	Availability      datatypes.JSON `json:"availability,omitempty" gorm:"type:jsonb"` // []AvailabilitySlot

	IsActive         bool    `json:"isActive" gorm:"not null;default:true"`
	AverageRating    float64 `json:"averageRating" gorm:"not null;default:0"`
	TotalReviews     int     `json:"totalReviews" gorm:"not null;default:0"`
	TotalCasesSolved int     `json:"totalCasesSolved" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Lawyer) TableName() string {
	return "lawyers"
}

func (l *Lawyer) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
