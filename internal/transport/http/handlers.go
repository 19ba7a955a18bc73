package http

import (
	"errors"
	"log"

	"consult-service/internal/middleware"
	"consult-service/internal/service"
	"consult-service/utils"

	"github.com/gofiber/fiber/v2"
)

// Handler bundles the resource handlers and their service dependencies.
type Handler struct {
	bookings *service.BookingService
	lawyers  *service.LawyerService
	reviews  *service.ReviewService
	payments *service.PaymentService
	users    *service.UserService
	r2Client *utils.ProfileR2Client // optional; nil disables image uploads
}

func NewHandler(
	bookings *service.BookingService,
	lawyers *service.LawyerService,
	reviews *service.ReviewService,
	payments *service.PaymentService,
	users *service.UserService,
	r2Client *utils.ProfileR2Client,
) *Handler {
	return &Handler{
		bookings: bookings,
		lawyers:  lawyers,
		reviews:  reviews,
		payments: payments,
		users:    users,
		r2Client: r2Client,
	}
}

// success writes the uniform success envelope: { success, data, message? }.
func success(c *fiber.Ctx, data interface{}, message ...string) error {
	body := fiber.Map{
		"success": true,
		"data":    data,
	}
	if len(message) > 0 && message[0] != "" {
		body["message"] = message[0]
	}
	return c.JSON(body)
}

// fail writes the uniform error envelope: { success: false, error, statusCode }.
func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success":    false,
		"error":      msg,
		"statusCode": status,
	})
}

// serviceError maps business-rule failures to their status code and flattens
// everything unexpected to a generic 500 so gateway errors never leak.
func serviceError(c *fiber.Ctx, err error) error {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return fail(c, svcErr.HTTPStatus(), svcErr.Message)
	}
	log.Printf("🔥 [ERROR] %s %s → %v", c.Method(), c.Path(), err)
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

// callerID pulls the authenticated Clerk subject out of locals; routes behind
// ClerkAuth always have it, but the check keeps misconfigured routes honest.
func callerID(c *fiber.Ctx) (string, bool) {
	return middleware.ClerkUserID(c)
}
