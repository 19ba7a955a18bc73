package http

import (
	"consult-service/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GET /api/bookings/:id
func (h *Handler) GetBooking(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	booking, err := h.bookings.Get(c.Context(), clerkUserID, id)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, booking)
}

// PATCH /api/bookings/:id
func (h *Handler) UpdateBooking(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	var in service.UpdateBookingInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	booking, err := h.bookings.Update(c.Context(), clerkUserID, id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, booking, "Booking updated successfully")
}

// DELETE /api/bookings/:id — soft cancel, never a physical delete.
func (h *Handler) DeleteBooking(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	var in service.CancelBookingInput
	_ = c.BodyParser(&in) // body is optional

	if err := h.bookings.DeleteAsCancel(c.Context(), clerkUserID, id, in); err != nil {
		return serviceError(c, err)
	}
	return success(c, nil, "Booking cancelled successfully")
}

// POST /api/bookings/:id/approve
func (h *Handler) ApproveBooking(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	var in service.ApproveBookingInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	booking, err := h.bookings.Approve(c.Context(), clerkUserID, id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, booking, "Booking approved successfully")
}

// POST /api/bookings/:id/reject
func (h *Handler) RejectBooking(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	var in service.RejectBookingInput
	_ = c.BodyParser(&in) // reason is optional

	booking, err := h.bookings.Reject(c.Context(), clerkUserID, id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, booking, "Booking rejected")
}

// POST /api/bookings/:id/complete
func (h *Handler) CompleteBooking(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	var in service.CompleteBookingInput
	_ = c.BodyParser(&in) // session notes are optional

	booking, err := h.bookings.Complete(c.Context(), clerkUserID, id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, booking, "Session completed successfully")
}

// POST /api/bookings/:id/cancel — client or lawyer.
func (h *Handler) CancelBooking(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid booking id")
	}

	var in service.CancelBookingInput
	_ = c.BodyParser(&in) // reason is optional

	booking, err := h.bookings.Cancel(c.Context(), clerkUserID, id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, booking, "Booking cancelled successfully")
}
