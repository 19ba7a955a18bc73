package http

import (
	"log"

	"consult-service/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GET /api/users/:id — public; the Clerk id never serializes.
func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}

	user, err := h.users.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, user)
}

// PATCH /api/users/:id — owner only, allow-listed fields.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var in service.UpdateUserInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.users.Update(c.Context(), clerkUserID, id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, user, "Profile updated successfully")
}

// POST /api/users/:id/profile-image — multipart upload, stored in R2.
func (h *Handler) UploadProfileImage(c *fiber.Ctx) error {
	clerkUserID, ok := callerID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if h.r2Client == nil {
		return fail(c, fiber.StatusServiceUnavailable, "Image uploads are not configured")
	}

	// Ownership check up front so we never upload on behalf of a non-owner.
	owner, err := h.users.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	if owner.ClerkID != clerkUserID {
		return fail(c, fiber.StatusForbidden, "Forbidden")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "image file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("❌ [UPLOAD] Failed to open upload for user %s: %v", id, err)
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}
	defer file.Close()

	url, err := h.r2Client.UploadProfileImage(c.Context(), file, fileHeader.Filename, id)
	if err != nil {
		log.Printf("❌ [UPLOAD] R2 upload failed for user %s: %v", id, err)
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}

	user, err := h.users.SetProfileImage(c.Context(), clerkUserID, id, url)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, user, "Profile image updated successfully")
}
