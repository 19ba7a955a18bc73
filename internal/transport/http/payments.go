package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// POST /api/payments/create-intent — simulated payment, marks the booking paid.
func (h *Handler) CreatePaymentIntent(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var body struct {
		BookingID string `json:"bookingId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if body.BookingID == "" {
		return fail(c, fiber.StatusBadRequest, "Booking ID is required")
	}
	bookingID, err := uuid.Parse(body.BookingID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	intent, err := h.payments.CreateFakeIntent(c.Context(), clerkUserID, bookingID)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, intent, "Payment processed successfully")
}

// POST /svc/v1/payments/verify — internal only, behind the service token.
func (h *Handler) VerifyPayment(c *fiber.Ctx) error {
	var body struct {
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if body.PaymentIntentID == "" {
		return fail(c, fiber.StatusBadRequest, "Payment Intent ID is required")
	}

	if err := h.payments.VerifyIntent(c.Context(), body.PaymentIntentID); err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.Map{"status": "Payment verified"})
}
