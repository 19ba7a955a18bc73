package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// POST /api/reviews/:id/respond — owning lawyer, at most once per review.
func (h *Handler) RespondToReview(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid review id")
	}

	var body struct {
		Response string `json:"response"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	review, err := h.reviews.Respond(c.Context(), clerkUserID, id, body.Response)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, review, "Response added successfully")
}
