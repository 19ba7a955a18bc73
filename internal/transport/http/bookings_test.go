package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"consult-service/internal/config"
	"consult-service/internal/middleware"
	"consult-service/internal/service"
	"consult-service/pkg/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testServiceToken = "svc-secret"

// stubAuth plays the role of ClerkAuth: the test caller identity travels in a
// plain header instead of a signed JWT.
func stubAuth(c *fiber.Ctx) error {
	if sub := c.Get("X-Test-Subject"); sub != "" {
		c.Locals(middleware.ClerkUserIDKey, sub)
	}
	return c.Next()
}

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Lawyer{}, &models.Booking{}, &models.Review{},
	))

	handler := NewHandler(
		service.NewBookingService(db, nil),
		service.NewLawyerService(db),
		service.NewReviewService(db),
		service.NewPaymentService(db),
		service.NewUserService(db),
		nil,
	)

	cfg := &config.Config{ServiceExpectedToken: testServiceToken}

	app := fiber.New()
	api := app.Group("/api", stubAuth)
	api.Get("/bookings/:id", handler.GetBooking)
	api.Patch("/bookings/:id", handler.UpdateBooking)
	api.Delete("/bookings/:id", handler.DeleteBooking)
	api.Post("/bookings/:id/approve", handler.ApproveBooking)
	api.Post("/bookings/:id/reject", handler.RejectBooking)
	api.Post("/bookings/:id/complete", handler.CompleteBooking)
	api.Post("/bookings/:id/cancel", handler.CancelBooking)
	api.Get("/lawyers/:id/reviews", handler.ListLawyerReviews)
	api.Post("/payments/create-intent", handler.CreatePaymentIntent)

	svc := app.Group("/svc/v1", middleware.ServiceAuth(cfg))
	svc.Post("/payments/verify", handler.VerifyPayment)

	return &testEnv{app: app, db: db}
}

func (e *testEnv) seedBooking(t *testing.T, status models.BookingStatus) *models.Booking {
	t.Helper()

	client := &models.User{ClerkID: "clerk_client", FirstName: "Test", LastName: "Client", Email: "client@example.com"}
	require.NoError(t, e.db.Create(client).Error)

	lawyerUser := &models.User{ClerkID: "clerk_lawyer", FirstName: "Test", LastName: "Lawyer", Email: "lawyer@example.com"}
	require.NoError(t, e.db.Create(lawyerUser).Error)
	lawyer := &models.Lawyer{UserID: lawyerUser.ID, ClerkID: "clerk_lawyer", Specialization: "Family Law", IsActive: true}
	require.NoError(t, e.db.Create(lawyer).Error)

	booking := &models.Booking{
		ClientID: client.ID,
		LawyerID: lawyer.ID,
		ClerkID:  client.ClerkID,
		Status:   status,
		Amount:   15000,
		Currency: "usd",
	}
	require.NoError(t, e.db.Create(booking).Error)
	return booking
}

func (e *testEnv) request(t *testing.T, method, path, subject string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set("X-Test-Subject", subject)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &envelope), "body: %s", raw)
	return resp, envelope
}

func TestApproveBookingEndpoint(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, models.BookingStatusPending)

	resp, body := env.request(t, fiber.MethodPost, "/api/bookings/"+booking.ID.String()+"/approve", "clerk_lawyer", fiber.Map{
		"confirmedDateTime": "2025-01-01T10:00:00Z",
		"meetingLink":       "https://meet.example.com/abc",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Booking approved successfully", body["message"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "approved", data["status"])
	assert.NotEmpty(t, data["approvedAt"])
	assert.NotContains(t, data, "clerkId")
}

func TestApproveBookingEndpoint_Errors(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, models.BookingStatusPending)
	in := fiber.Map{"confirmedDateTime": "2025-01-01T10:00:00Z"}

	// No identity.
	resp, body := env.request(t, fiber.MethodPost, "/api/bookings/"+booking.ID.String()+"/approve", "", in)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	// Malformed id.
	resp, body = env.request(t, fiber.MethodPost, "/api/bookings/not-a-uuid/approve", "clerk_lawyer", in)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid booking id", body["error"])

	// Unknown booking.
	resp, _ = env.request(t, fiber.MethodPost, "/api/bookings/"+uuid.NewString()+"/approve", "clerk_lawyer", in)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Caller is not the assigned lawyer.
	resp, _ = env.request(t, fiber.MethodPost, "/api/bookings/"+booking.ID.String()+"/approve", "clerk_client", in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRejectThenApproveEndpoint(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, models.BookingStatusPending)
	path := "/api/bookings/" + booking.ID.String()

	resp, body := env.request(t, fiber.MethodPost, path+"/reject", "clerk_lawyer", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "rejected", data["status"])
	assert.Equal(t, "No reason provided", data["lawyerNotes"])

	// Rejected is terminal.
	resp, body = env.request(t, fiber.MethodPost, path+"/approve", "clerk_lawyer", fiber.Map{
		"confirmedDateTime": "2025-01-01T10:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Only pending bookings can be approved", body["error"])
}

func TestDeleteBookingEndpoint_SoftCancel(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, models.BookingStatusPending)
	path := "/api/bookings/" + booking.ID.String()

	resp, body := env.request(t, fiber.MethodDelete, path, "clerk_client", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Booking cancelled successfully", body["message"])

	resp, body = env.request(t, fiber.MethodGet, path, "clerk_client", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "cancelled", data["status"])
}

func TestListLawyerReviewsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, models.BookingStatusCompleted)

	review := &models.Review{
		ClientID:  booking.ClientID,
		LawyerID:  booking.LawyerID,
		Rating:    5,
		Comment:   "Excellent advice",
		IsVisible: true,
	}
	require.NoError(t, env.db.Create(review).Error)

	// Public route, no identity header.
	resp, body := env.request(t, fiber.MethodGet, "/api/lawyers/"+booking.LawyerID.String()+"/reviews?page=1&limit=10", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	pagination := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total"])
	stats := data["stats"].(map[string]interface{})
	distribution := stats["ratingDistribution"].(map[string]interface{})
	assert.Equal(t, float64(1), distribution["5"])
}

func TestPaymentEndpoints(t *testing.T) {
	env := newTestEnv(t)
	booking := env.seedBooking(t, models.BookingStatusApproved)

	resp, body := env.request(t, fiber.MethodPost, "/api/payments/create-intent", "clerk_client", fiber.Map{
		"bookingId": booking.ID.String(),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	intentID, _ := data["paymentIntentId"].(string)
	assert.NotEmpty(t, intentID)
	assert.Equal(t, "succeeded", data["status"])

	resp, body = env.request(t, fiber.MethodPost, "/api/payments/create-intent", "clerk_client", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Booking ID is required", body["error"])

	// Verify route requires the service token.
	req := httptest.NewRequest(fiber.MethodPost, "/svc/v1/payments/verify", bytes.NewReader([]byte(`{"paymentIntentId":"`+intentID+`"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp2, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
	resp2.Body.Close()

	req = httptest.NewRequest(fiber.MethodPost, "/svc/v1/payments/verify", bytes.NewReader([]byte(`{"paymentIntentId":"`+intentID+`"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", testServiceToken)
	resp2, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	resp2.Body.Close()

	req = httptest.NewRequest(fiber.MethodPost, "/svc/v1/payments/verify", bytes.NewReader([]byte(`{"paymentIntentId":"pi_fake_0_zzzzzzz"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", testServiceToken)
	resp2, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
	resp2.Body.Close()
}
