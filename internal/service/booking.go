package service

import (
	"context"
	"errors"
	"log"
	"time"

	"consult-service/internal/email"
	"consult-service/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultReason = "No reason provided"

// BookingService owns the booking status lifecycle. Every transition is a
// single conditional UPDATE guarded by the expected current status, so two
// racing calls cannot both move the same booking.
type BookingService struct {
	db     *gorm.DB
	mailer *email.Sender // optional; nil disables status emails
}

func NewBookingService(db *gorm.DB, mailer *email.Sender) *BookingService {
	return &BookingService{db: db, mailer: mailer}
}

type ApproveBookingInput struct {
	ConfirmedDateTime string  `json:"confirmedDateTime"`
	MeetingLink       *string `json:"meetingLink"`
	LawyerNotes       *string `json:"lawyerNotes"`
}

type RejectBookingInput struct {
	Reason *string `json:"reason"`
}

type CompleteBookingInput struct {
	SessionNotes *string `json:"sessionNotes"`
}

type CancelBookingInput struct {
	CancellationReason *string `json:"cancellationReason"`
}

type UpdateBookingInput struct {
	ClientNotes *string `json:"clientNotes"`
	LawyerNotes *string `json:"lawyerNotes"`
	MeetingLink *string `json:"meetingLink"`
}

// Get returns the populated booking if the caller is its client or its lawyer.
func (s *BookingService) Get(ctx context.Context, clerkUserID string, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.loadPopulated(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !s.isParticipant(ctx, clerkUserID, booking) {
		return nil, forbidden("Forbidden")
	}
	return booking, nil
}

// Approve moves a pending booking to approved. Lawyer-only.
func (s *BookingService) Approve(ctx context.Context, clerkUserID string, bookingID uuid.UUID, in ApproveBookingInput) (*models.Booking, error) {
	lawyer, err := s.callerLawyer(ctx, clerkUserID)
	if err != nil {
		return nil, err
	}
	if lawyer == nil {
		return nil, forbidden("Only lawyers can approve bookings")
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.LawyerID != lawyer.ID {
		return nil, forbidden("Forbidden")
	}
	if booking.Status != models.BookingStatusPending {
		return nil, invalidState("Only pending bookings can be approved")
	}

	confirmed, err := time.Parse(time.RFC3339, in.ConfirmedDateTime)
	if err != nil {
		return nil, invalidInput("Invalid confirmedDateTime, expected RFC3339")
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":              models.BookingStatusApproved,
		"approved_at":         now,
		"confirmed_date_time": confirmed,
	}
	if in.MeetingLink != nil && *in.MeetingLink != "" {
		updates["meeting_link"] = *in.MeetingLink
	}
	if in.LawyerNotes != nil && *in.LawyerNotes != "" {
		updates["lawyer_notes"] = *in.LawyerNotes
	}

	if err := s.transition(ctx, bookingID, models.BookingStatusPending, updates); err != nil {
		return nil, err
	}

	updated, err := s.loadPopulated(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(updated, email.BookingEventApproved)
	return updated, nil
}

// Reject moves a pending booking to rejected (terminal). Lawyer-only.
func (s *BookingService) Reject(ctx context.Context, clerkUserID string, bookingID uuid.UUID, in RejectBookingInput) (*models.Booking, error) {
	lawyer, err := s.callerLawyer(ctx, clerkUserID)
	if err != nil {
		return nil, err
	}
	if lawyer == nil {
		return nil, forbidden("Only lawyers can reject bookings")
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.LawyerID != lawyer.ID {
		return nil, forbidden("Forbidden")
	}
	if booking.Status != models.BookingStatusPending {
		return nil, invalidState("Only pending bookings can be rejected")
	}

	reason := defaultReason
	if in.Reason != nil && *in.Reason != "" {
		reason = *in.Reason
	}

	updates := map[string]interface{}{
		"status":       models.BookingStatusRejected,
		"rejected_at":  time.Now().UTC(),
		"lawyer_notes": reason,
	}
	if err := s.transition(ctx, bookingID, models.BookingStatusPending, updates); err != nil {
		return nil, err
	}

	updated, err := s.loadPopulated(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(updated, email.BookingEventRejected)
	return updated, nil
}

// Complete moves an approved booking to completed, settles payment and bumps
// the lawyer's completed-case counter. Lawyer-only.
func (s *BookingService) Complete(ctx context.Context, clerkUserID string, bookingID uuid.UUID, in CompleteBookingInput) (*models.Booking, error) {
	lawyer, err := s.callerLawyer(ctx, clerkUserID)
	if err != nil {
		return nil, err
	}
	if lawyer == nil {
		return nil, forbidden("Only lawyers can complete bookings")
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.LawyerID != lawyer.ID {
		return nil, forbidden("Forbidden")
	}
	if booking.Status != models.BookingStatusApproved {
		return nil, invalidState("Only approved bookings can be completed")
	}

	updates := map[string]interface{}{
		"status":         models.BookingStatusCompleted,
		"completed_at":   time.Now().UTC(),
		"payment_status": models.PaymentStatusPaid, // completion implies settlement
	}
	if in.SessionNotes != nil && *in.SessionNotes != "" {
		updates["lawyer_notes"] = *in.SessionNotes
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", bookingID, models.BookingStatusApproved).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidState("Only approved bookings can be completed")
		}
		return tx.Model(&models.Lawyer{}).
			Where("id = ?", lawyer.ID).
			UpdateColumn("total_cases_solved", gorm.Expr("total_cases_solved + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.loadPopulated(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(updated, email.BookingEventCompleted)
	return updated, nil
}

// Cancel moves a non-terminal booking to cancelled. Client or lawyer. A paid
// booking is marked refunded (simulated, no external refund call).
func (s *BookingService) Cancel(ctx context.Context, clerkUserID string, bookingID uuid.UUID, in CancelBookingInput) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCompleted || booking.Status == models.BookingStatusCancelled {
		return nil, invalidState("Cannot cancel this booking")
	}
	if !s.isParticipant(ctx, clerkUserID, booking) {
		return nil, forbidden("Forbidden")
	}

	if err := s.cancel(ctx, bookingID, in.CancellationReason); err != nil {
		return nil, err
	}

	updated, err := s.loadPopulated(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(updated, email.BookingEventCancelled)
	return updated, nil
}

// Update patches the free-form booking fields. Restricted to participants and
// to clientNotes/lawyerNotes/meetingLink; anything else in the body is ignored.
func (s *BookingService) Update(ctx context.Context, clerkUserID string, bookingID uuid.UUID, in UpdateBookingInput) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !s.isParticipant(ctx, clerkUserID, booking) {
		return nil, forbidden("Forbidden")
	}

	updates := map[string]interface{}{}
	if in.ClientNotes != nil {
		updates["client_notes"] = *in.ClientNotes
	}
	if in.LawyerNotes != nil {
		updates["lawyer_notes"] = *in.LawyerNotes
	}
	if in.MeetingLink != nil {
		updates["meeting_link"] = *in.MeetingLink
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("id = ?", bookingID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.loadPopulated(ctx, bookingID)
}

// DeleteAsCancel is the DELETE surface for a booking: a soft cancel, never a
// physical delete. Same preconditions as Cancel.
func (s *BookingService) DeleteAsCancel(ctx context.Context, clerkUserID string, bookingID uuid.UUID, in CancelBookingInput) error {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == models.BookingStatusCompleted || booking.Status == models.BookingStatusCancelled {
		return invalidState("Cannot cancel this booking")
	}
	if !s.isParticipant(ctx, clerkUserID, booking) {
		return forbidden("Forbidden")
	}
	return s.cancel(ctx, bookingID, in.CancellationReason)
}

// cancel applies the cancellation transition. payment_status flips to refunded
// only when it is currently paid, in the same statement.
func (s *BookingService) cancel(ctx context.Context, bookingID uuid.UUID, reasonIn *string) error {
	reason := defaultReason
	if reasonIn != nil && *reasonIn != "" {
		reason = *reasonIn
	}

	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ?", bookingID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusApproved}).
		Updates(map[string]interface{}{
			"status":              models.BookingStatusCancelled,
			"cancelled_at":        time.Now().UTC(),
			"cancellation_reason": reason,
			"payment_status": gorm.Expr(
				"CASE WHEN payment_status = ? THEN ? ELSE payment_status END",
				models.PaymentStatusPaid, models.PaymentStatusRefunded),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invalidState("Cannot cancel this booking")
	}
	return nil
}

// transition applies updates only while the booking still holds the expected
// status. Zero rows after the preconditions passed means a concurrent call won.
func (s *BookingService) transition(ctx context.Context, bookingID uuid.UUID, expected models.BookingStatus, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, expected).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invalidState("Booking is no longer " + string(expected))
	}
	return nil
}

func (s *BookingService) loadBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).First(&booking, "id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Booking not found")
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *BookingService) loadPopulated(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Lawyer").
		Preload("Lawyer.User").
		First(&booking, "id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Booking not found")
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// callerLawyer resolves the caller's lawyer record, nil when the caller is not
// a lawyer at all.
func (s *BookingService) callerLawyer(ctx context.Context, clerkUserID string) (*models.Lawyer, error) {
	var lawyer models.Lawyer
	err := s.db.WithContext(ctx).First(&lawyer, "clerk_id = ?", clerkUserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lawyer, nil
}

// isParticipant reports whether the caller maps to the booking's client or its
// assigned lawyer. A caller can hold both a user and a lawyer record; either
// match grants access.
func (s *BookingService) isParticipant(ctx context.Context, clerkUserID string, booking *models.Booking) bool {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "clerk_id = ?", clerkUserID).Error; err == nil {
		if booking.ClientID == user.ID {
			return true
		}
	}
	var lawyer models.Lawyer
	if err := s.db.WithContext(ctx).First(&lawyer, "clerk_id = ?", clerkUserID).Error; err == nil {
		if booking.LawyerID == lawyer.ID {
			return true
		}
	}
	return false
}

func (s *BookingService) notify(booking *models.Booking, event email.BookingEvent) {
	if s.mailer == nil || booking.Client == nil {
		return
	}
	if err := s.mailer.SendBookingStatus(booking, event); err != nil {
		log.Printf("⚠️ [MAIL] Failed to queue %s email for booking %s: %v", event, booking.ID, err)
	}
}
