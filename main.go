package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consult-service/internal/config"
	"consult-service/internal/email"
	"consult-service/internal/middleware"
	"consult-service/internal/service"
	"consult-service/internal/store"
	transport "consult-service/internal/transport/http"
	"consult-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

var startTime time.Time

func main() {
	startTime = time.Now()
	cfg := config.Load()
	store.InitDB(cfg)
	db := store.GetDB()

	// Clerk JWKS — required for every authenticated route.
	if cfg.ClerkJWKSURL == "" {
		log.Fatal("❌ CLERK_JWKS_URL is required")
	}
	jwks, err := middleware.NewClerkJWKS(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to fetch Clerk JWKS: %v", err)
	}
	log.Println("✅ [CLERK] JWKS loaded")

	// Optional R2 client for profile image uploads.
	var r2Client *utils.ProfileR2Client
	if cfg.R2AccountID != "" {
		r2Client, err = utils.NewProfileR2Client(utils.ProfileR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatalf("❌ [R2] Failed to initialize client: %v", err)
		}
		log.Println("✅ [R2] Profile image R2 client initialized")
	} else {
		log.Println("⚠️ [R2] Disabled (no R2_ACCOUNT_ID) — profile image uploads unavailable")
	}

	// Optional SMTP sender for booking status emails.
	var mailer *email.Sender
	if cfg.SMTPHost != "" {
		mailer = email.NewSender(cfg)
		log.Println("✅ [MAIL] SMTP sender initialized")
	} else {
		log.Println("⚠️ [MAIL] Disabled (no SMTP_HOST) — booking status emails unavailable")
	}

	bookingService := service.NewBookingService(db, mailer)
	lawyerService := service.NewLawyerService(db)
	reviewService := service.NewReviewService(db)
	paymentService := service.NewPaymentService(db)
	userService := service.NewUserService(db)
	handler := transport.NewHandler(bookingService, lawyerService, reviewService, paymentService, userService, r2Client)
	log.Println("✅ [SERVICE] Services & Handler initialized")

	app := fiber.New(fiber.Config{
		AppName:      "consult-service",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With,X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${ua}\n",
	}))

	clerkAuth := middleware.ClerkAuth(jwks, cfg)

	api := app.Group("/api")

	// Users
	api.Get("/users/:id", handler.GetUser)
	api.Patch("/users/:id", clerkAuth, handler.UpdateUser)
	api.Post("/users/:id/profile-image", clerkAuth, handler.UploadProfileImage)

	// Lawyers
	api.Get("/lawyers/:id", handler.GetLawyer)
	api.Patch("/lawyers/:id", clerkAuth, handler.UpdateLawyer)
	api.Delete("/lawyers/:id", clerkAuth, handler.DeactivateLawyer)
	api.Get("/lawyers/:id/availability", handler.GetAvailability)
	api.Patch("/lawyers/:id/availability", clerkAuth, handler.SetAvailability)
	api.Get("/lawyers/:id/reviews", handler.ListLawyerReviews)

	// Bookings
	api.Get("/bookings/:id", clerkAuth, handler.GetBooking)
	api.Patch("/bookings/:id", clerkAuth, handler.UpdateBooking)
	api.Delete("/bookings/:id", clerkAuth, handler.DeleteBooking)
	api.Post("/bookings/:id/approve", clerkAuth, handler.ApproveBooking)
	api.Post("/bookings/:id/reject", clerkAuth, handler.RejectBooking)
	api.Post("/bookings/:id/complete", clerkAuth, handler.CompleteBooking)
	api.Post("/bookings/:id/cancel", clerkAuth, handler.CancelBooking)

	// Reviews
	api.Post("/reviews/:id/respond", clerkAuth, handler.RespondToReview)

	// Payments
	api.Post("/payments/create-intent", clerkAuth, handler.CreatePaymentIntent)

	// Internal service-to-service routes
	svc := app.Group("/svc/v1", middleware.ServiceAuth(cfg))
	svc.Post("/payments/verify", handler.VerifyPayment)
	log.Println("✅ [ROUTES] Registered /api/* and /svc/v1/payments/verify")

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		uptime := time.Since(startTime).Round(time.Second)
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "consult-service",
			"uptime":    uptime.String(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("🛑 [SHUTDOWN] Graceful shutdown initiated...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ [SHUTDOWN] Error: %v", err)
		}
		jwks.EndBackground()
	}()

	log.Printf("🚀 consult-service starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("❌ [STARTUP] Server failed to start: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var errMsg string
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		errMsg = e.Message
	} else {
		errMsg = err.Error()
	}
	log.Printf("🔥 [ERROR] [%d] %s %s → %v | IP=%s", code, c.Method(), c.Path(), errMsg, c.IP())
	return c.Status(code).JSON(fiber.Map{
		"success":    false,
		"error":      "something went wrong",
		"statusCode": code,
	})
}
