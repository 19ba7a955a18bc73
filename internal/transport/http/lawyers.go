package http

import (
	"encoding/json"

	"consult-service/pkg/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GET /api/lawyers/:id — public.
func (h *Handler) GetLawyer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid lawyer id")
	}

	lawyer, err := h.lawyers.GetProfile(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, lawyer)
}

// PATCH /api/lawyers/:id — owner only, allow-listed field merge.
func (h *Handler) UpdateLawyer(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid lawyer id")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	lawyer, err := h.lawyers.UpdateProfile(c.Context(), clerkUserID, id, fields)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, lawyer, "Profile updated successfully")
}

// DELETE /api/lawyers/:id — soft-disable the profile.
func (h *Handler) DeactivateLawyer(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid lawyer id")
	}

	if err := h.lawyers.Deactivate(c.Context(), clerkUserID, id); err != nil {
		return serviceError(c, err)
	}
	return success(c, nil, "Profile deactivated successfully")
}

// GET /api/lawyers/:id/availability — public.
func (h *Handler) GetAvailability(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid lawyer id")
	}

	slots, err := h.lawyers.GetAvailability(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, slots)
}

// PATCH /api/lawyers/:id/availability — owner only, full overwrite.
func (h *Handler) SetAvailability(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid lawyer id")
	}

	// The availability field must be an array; anything else is rejected.
	var body struct {
		Availability json.RawMessage `json:"availability"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil || len(body.Availability) == 0 {
		return fail(c, fiber.StatusBadRequest, "Invalid availability format")
	}
	var slots []models.AvailabilitySlot
	if err := json.Unmarshal(body.Availability, &slots); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid availability format")
	}

	updated, err := h.lawyers.SetAvailability(c.Context(), clerkUserID, id, slots)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, updated, "Availability updated successfully")
}

// GET /api/lawyers/:id/reviews — public, paginated.
func (h *Handler) ListLawyerReviews(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid lawyer id")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	result, err := h.reviews.ListForLawyer(c.Context(), id, page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, result)
}
