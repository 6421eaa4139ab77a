package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"clubhouse_echo/internal/handlers"
	clubMiddleware "clubhouse_echo/internal/middleware"
	"clubhouse_echo/internal/services"
)

// RequestValidator adapts validator/v10 to Echo's Validator interface
type RequestValidator struct {
	validator *validator.Validate
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, err := services.InitFirebase(credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Admin auth will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migration
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Redis is optional, slot holds and caching degrade gracefully without it
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	} else {
		log.Println("Warning: REDIS_URL not set, slot holds and caching disabled")
	}

	// Domain services
	ccavenue := services.NewCCAvenueService()
	midtrans := services.NewMidtransService()
	conflicts := services.NewConflictChecker(db, cache)
	reservations := services.NewReservationService(db, conflicts, ccavenue, midtrans)
	reconciler := services.NewReconcileService(db, ccavenue, conflicts)

	// Create Echo instance
	e := echo.New()
	e.Validator = &RequestValidator{validator: validator.New()}
	e.HTTPErrorHandler = clubMiddleware.CustomErrorHandler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authClient)
	memberHandler := handlers.NewMemberHandler(db)
	planHandler := handlers.NewPlanHandler(db, cache)
	activityHandler := handlers.NewActivityHandler(db)
	eventHandler := handlers.NewEventHandler(db)
	hallHandler := handlers.NewHallHandler(db)
	bookingHandler := handlers.NewBookingHandler(db, reconciler)
	paymentHandler := handlers.NewPaymentHandler(db, reservations, reconciler, midtrans)
	dashboardHandler := handlers.NewDashboardHandler(db)

	// Auth
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)

	// Public routes, reached by members and the payment gateway
	e.POST("/api/members/register", memberHandler.RegisterMember)
	e.GET("/api/halls/:id/availability", hallHandler.HallAvailability)

	e.POST("/api/payment/initiate/booking", paymentHandler.InitiateBooking)
	e.POST("/api/payment/initiate/enrollment", paymentHandler.InitiateEnrollment)
	e.POST("/api/payment/initiate/hall", paymentHandler.InitiateHall)
	e.POST("/api/payment/initiate/event", paymentHandler.InitiateEvent)
	e.POST("/api/payment/initiate/membership", paymentHandler.InitiateMembership)
	e.POST("/api/payment/initiate/renewal", paymentHandler.InitiateRenewal)
	e.GET("/api/payment/status/:orderID", paymentHandler.PaymentStatus)

	// Gateway return endpoints, one per booking kind so the redirect URL
	// identifies what was being paid for
	for _, kind := range []string{"booking", "enrollment", "hall", "event", "membership", "renewal"} {
		e.POST("/payment/ccavenue-"+kind+"-response", paymentHandler.CCAvenueCallback)
	}
	e.POST("/payment/midtrans-notification", paymentHandler.MidtransNotification)

	// Admin routes
	admin := e.Group("/api/admin")
	admin.Use(clubMiddleware.RequireAuth(authClient))

	admin.GET("/dashboard/summary", dashboardHandler.Summary)

	admin.GET("/members", memberHandler.ListMembers)
	admin.GET("/members/:id", memberHandler.GetMember)
	admin.PUT("/members/:id", memberHandler.UpdateMember)
	admin.POST("/members/:id/deactivate", memberHandler.DeactivateMember)

	admin.GET("/plans", planHandler.ListPlans)
	admin.POST("/plans", planHandler.StorePlan)
	admin.GET("/plans/:id", planHandler.GetPlan)
	admin.PUT("/plans/:id", planHandler.UpdatePlan)
	admin.DELETE("/plans/:id", planHandler.DeletePlan)

	admin.GET("/activities", activityHandler.ListActivities)
	admin.POST("/activities", activityHandler.StoreActivity)
	admin.PUT("/activities/:id", activityHandler.UpdateActivity)
	admin.POST("/activities/:id/batches", activityHandler.StoreBatch)
	admin.GET("/batches/:id", activityHandler.GetBatch)
	admin.PUT("/batches/:id", activityHandler.UpdateBatch)

	admin.GET("/events", eventHandler.ListEvents)
	admin.POST("/events", eventHandler.StoreEvent)
	admin.GET("/events/:id", eventHandler.GetEvent)
	admin.PUT("/events/:id", eventHandler.UpdateEvent)

	admin.GET("/halls", hallHandler.ListHalls)
	admin.POST("/halls", hallHandler.StoreHall)
	admin.PUT("/halls/:id", hallHandler.UpdateHall)

	admin.GET("/bookings", bookingHandler.ListBookings)
	admin.GET("/bookings/:id", bookingHandler.GetBooking)
	admin.POST("/bookings/:id/cancel", bookingHandler.CancelBooking)
	admin.GET("/hall-bookings", bookingHandler.ListHallBookings)
	admin.GET("/event-bookings", bookingHandler.ListEventBookings)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
