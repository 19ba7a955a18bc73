package email

import (
	"context"
	"fmt"
	"log"
	"time"

	"consult-service/internal/config"
	"consult-service/internal/email/templates"
	"consult-service/pkg/models"

	"gopkg.in/gomail.v2"
)

type BookingEvent string

const (
	BookingEventApproved  BookingEvent = "approved"
	BookingEventRejected  BookingEvent = "rejected"
	BookingEventCompleted BookingEvent = "completed"
	BookingEventCancelled BookingEvent = "cancelled"
)

type Sender struct {
	cfg *config.Config
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	log.Printf("📧 [SEND] To: %s | Subject: %s", to, subject)

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFrom))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	dialer := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)

	// Exponential backoff: 1s, 2s, 4s → max 3 retries
	for attempt := 0; attempt < 3; attempt++ {
		if err := dialer.DialAndSend(m); err != nil {
			delay := time.Duration(1<<attempt) * time.Second
			log.Printf("❌ [ATTEMPT %d] Failed to send email to %s: %v → retrying in %v", attempt+1, to, err, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("email send cancelled: %w", ctx.Err())
			}
			continue
		}
		log.Printf("✅ [SUCCESS] Email sent to %s (Subject: %s)", to, subject)
		return nil
	}

	return fmt.Errorf("failed to send email to %s after 3 attempts", to)
}

// SendBookingStatus renders the status email for the booking's client and
// queues it for async delivery. The booking must carry a populated Client.
func (s *Sender) SendBookingStatus(booking *models.Booking, event BookingEvent) error {
	if booking.Client == nil {
		return fmt.Errorf("booking %s has no populated client", booking.ID)
	}

	data := templates.BookingStatusData{
		ClientName: booking.Client.FirstName,
		Headline:   headlineFor(event),
	}
	if booking.Lawyer != nil && booking.Lawyer.User != nil {
		data.LawyerName = booking.Lawyer.User.FirstName + " " + booking.Lawyer.User.LastName
	}
	if booking.ConfirmedDateTime != nil {
		data.ConfirmedDateTime = booking.ConfirmedDateTime.Format("Mon, 02 Jan 2006 15:04 MST")
	}
	if booking.MeetingLink != nil {
		data.MeetingLink = *booking.MeetingLink
	}
	if event == BookingEventCancelled && booking.CancellationReason != nil {
		data.Reason = *booking.CancellationReason
	}
	if event == BookingEventRejected && booking.LawyerNotes != nil {
		data.Reason = *booking.LawyerNotes
	}

	body, err := templates.RenderBookingStatus(data)
	if err != nil {
		return fmt.Errorf("render booking status: %w", err)
	}

	to := booking.Client.Email
	subject := subjectFor(event)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if sendErr := s.Send(ctx, to, subject, body); sendErr != nil {
			log.Printf("⚠️ [MAIL] Background email failed for booking %s (%s): %v", booking.ID, event, sendErr)
		}
	}()

	log.Printf("📧 [QUEUED] Booking %s email queued for %s (%s)", event, to, booking.ID)
	return nil
}

func subjectFor(event BookingEvent) string {
	switch event {
	case BookingEventApproved:
		return "✅ Your Consultation Is Confirmed"
	case BookingEventRejected:
		return "Your Booking Request Was Declined"
	case BookingEventCompleted:
		return "Your Consultation Is Complete"
	case BookingEventCancelled:
		return "Your Booking Was Cancelled"
	}
	return "Booking Update"
}

func headlineFor(event BookingEvent) string {
	switch event {
	case BookingEventApproved:
		return "Your consultation has been approved."
	case BookingEventRejected:
		return "Your booking request was declined."
	case BookingEventCompleted:
		return "Your consultation has been marked complete."
	case BookingEventCancelled:
		return "Your booking has been cancelled."
	}
	return "Your booking was updated."
}
