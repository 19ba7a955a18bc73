package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"consult-service/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentService simulates a payment processor: it issues synthetic intent ids
// and stamps bookings paid without any external settlement call.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

type FakeIntent struct {
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	Message         string `json:"message"`
}

// CreateFakeIntent marks an unpaid booking paid under a fresh synthetic intent
// id. When the booking carries an owner identity it must match the caller.
func (s *PaymentService) CreateFakeIntent(ctx context.Context, clerkUserID string, bookingID uuid.UUID) (*FakeIntent, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).First(&booking, "id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Booking not found")
	}
	if err != nil {
		return nil, err
	}

	if booking.ClerkID != "" && booking.ClerkID != clerkUserID {
		return nil, forbidden("Forbidden")
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, invalidState("Booking already paid")
	}

	intentID := newFakeIntentID()

	// Guarded on the payment still being unsettled so a concurrent call cannot
	// overwrite an existing intent.
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND payment_status <> ?", bookingID, models.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"payment_intent_id": intentID,
			"payment_status":    models.PaymentStatusPaid,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, invalidState("Booking already paid")
	}

	return &FakeIntent{
		PaymentIntentID: intentID,
		Amount:          booking.Amount,
		Currency:        booking.Currency,
		Status:          "succeeded",
		Message:         "Fake payment successful",
	}, nil
}

// VerifyIntent looks the booking up by intent id and marks it paid. Exposed
// only behind the internal service-token middleware.
func (s *PaymentService) VerifyIntent(ctx context.Context, paymentIntentID string) error {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("payment_intent_id = ?", paymentIntentID).
		UpdateColumn("payment_status", models.PaymentStatusPaid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Invalid payment intent")
	}
	return nil
}

const intentAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func newFakeIntentID() string {
	suffix := make([]byte, 7)
	for i := range suffix {
		suffix[i] = intentAlphabet[rand.Intn(len(intentAlphabet))]
	}
	return fmt.Sprintf("pi_fake_%d_%s", time.Now().UnixMilli(), suffix)
}
