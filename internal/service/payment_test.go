package service

import (
	"context"
	"strings"
	"testing"

	"consult-service/pkg/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFakeIntent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)

	client := createUser(t, db, "clerk_client")
	lawyer := createLawyer(t, db, "clerk_lawyer")
	booking := createBooking(t, db, client, lawyer, models.BookingStatusApproved)

	intent, err := svc.CreateFakeIntent(context.Background(), "clerk_client", booking.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(intent.PaymentIntentID, "pi_fake_"), "intent id %q", intent.PaymentIntentID)
	assert.Equal(t, booking.Amount, intent.Amount)
	assert.Equal(t, "usd", intent.Currency)
	assert.Equal(t, "succeeded", intent.Status)
	assert.Equal(t, "Fake payment successful", intent.Message)

	got := reloadBooking(t, db, booking.ID)
	assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
	require.NotNil(t, got.PaymentIntentID)
	assert.Equal(t, intent.PaymentIntentID, *got.PaymentIntentID)
}

func TestCreateFakeIntent_AlreadyPaid(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)
	ctx := context.Background()

	client := createUser(t, db, "clerk_client")
	lawyer := createLawyer(t, db, "clerk_lawyer")
	booking := createBooking(t, db, client, lawyer, models.BookingStatusApproved)

	first, err := svc.CreateFakeIntent(ctx, "clerk_client", booking.ID)
	require.NoError(t, err)

	_, err = svc.CreateFakeIntent(ctx, "clerk_client", booking.ID)
	requireKind(t, err, KindInvalidState)

	// The original intent id must survive the rejected retry.
	got := reloadBooking(t, db, booking.ID)
	require.NotNil(t, got.PaymentIntentID)
	assert.Equal(t, first.PaymentIntentID, *got.PaymentIntentID)
}

func TestCreateFakeIntent_OwnerMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)

	client := createUser(t, db, "clerk_client")
	lawyer := createLawyer(t, db, "clerk_lawyer")
	createUser(t, db, "clerk_stranger")
	booking := createBooking(t, db, client, lawyer, models.BookingStatusApproved)

	_, err := svc.CreateFakeIntent(context.Background(), "clerk_stranger", booking.ID)
	requireKind(t, err, KindForbidden)

	assert.Equal(t, models.PaymentStatusUnpaid, reloadBooking(t, db, booking.ID).PaymentStatus)
}

func TestCreateFakeIntent_UnknownBooking(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)

	_, err := svc.CreateFakeIntent(context.Background(), "clerk_client", uuid.New())
	requireKind(t, err, KindNotFound)
}

func TestVerifyIntent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)
	ctx := context.Background()

	client := createUser(t, db, "clerk_client")
	lawyer := createLawyer(t, db, "clerk_lawyer")
	booking := createBooking(t, db, client, lawyer, models.BookingStatusApproved)

	intentID := "pi_fake_1735689600000_abc1234"
	require.NoError(t, db.Model(booking).UpdateColumn("payment_intent_id", intentID).Error)

	require.NoError(t, svc.VerifyIntent(ctx, intentID))
	assert.Equal(t, models.PaymentStatusPaid, reloadBooking(t, db, booking.ID).PaymentStatus)

	// Verification is idempotent for a known intent.
	require.NoError(t, svc.VerifyIntent(ctx, intentID))
}

func TestVerifyIntent_UnknownIntent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)

	err := svc.VerifyIntent(context.Background(), "pi_fake_0_zzzzzzz")
	requireKind(t, err, KindNotFound)
}

func TestNewFakeIntentID_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := newFakeIntentID()
		parts := strings.Split(id, "_")
		require.Len(t, parts, 4, "intent id %q", id)
		assert.Equal(t, "pi", parts[0])
		assert.Equal(t, "fake", parts[1])
		assert.Len(t, parts[3], 7)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1)
}
