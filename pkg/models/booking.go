package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking is a scheduled consultation between a client and a lawyer.
// Status only moves along: pending → approved → completed, pending → rejected,
// {pending, approved} → cancelled. Bookings are never hard-deleted; cancellation
// is a terminal soft state.
type Booking struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClientID uuid.UUID `json:"clientId" gorm:"type:uuid;not null;index"`
	Client   *User     `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	LawyerID uuid.UUID `json:"lawyerId" gorm:"type:uuid;not null;index"`
	Lawyer   *Lawyer   `json:"lawyer,omitempty" gorm:"foreignKey:LawyerID"`
	// Identity-provider subject of the booking creator, for payment ownership checks.
	ClerkID string `json:"-" gorm:"type:varchar(64);index"`

	Status            BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ConfirmedDateTime *time.Time    `json:"confirmedDateTime,omitempty"`
	MeetingLink       *string       `json:"meetingLink,omitempty" gorm:"type:varchar(500)"`
	ClientNotes       *string       `json:"clientNotes,omitempty" gorm:"type:text"`
	LawyerNotes       *string       `json:"lawyerNotes,omitempty" gorm:"type:text"`

	ApprovedAt         *time.Time `json:"approvedAt,omitempty"`
	RejectedAt         *time.Time `json:"rejectedAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty" gorm:"type:text"`

	PaymentStatus   PaymentStatus `json:"paymentStatus" gorm:"type:varchar(20);not null;default:'unpaid'"`
	PaymentIntentID *string       `json:"paymentIntentId,omitempty" gorm:"type:varchar(100);index"`
	Amount          int64         `json:"amount" gorm:"not null;default:0"` // minor units
	Currency        string        `json:"currency" gorm:"type:varchar(10);not null;default:'usd'"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}
