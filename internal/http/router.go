package http

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"

	"fleetbook/internal/config"
	"fleetbook/internal/http/handlers"
	"fleetbook/internal/http/middleware"
	"fleetbook/internal/pkg/logger"
	"fleetbook/internal/repositories"
	"fleetbook/internal/services"
)

// NewRouter wires repositories, services and handlers onto a gin
// engine. Everything under /api except login and health requires a
// valid token.
func NewRouter(cfg config.Config, sqlDB *sql.DB, log logger.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	bookings := repositories.BookingRepo{DB: sqlDB}
	trips := repositories.TripRepo{DB: sqlDB}
	assignments := repositories.AssignmentRepo{DB: sqlDB}
	fleet := repositories.FleetRepo{DB: sqlDB}
	rates := repositories.RateRepo{DB: sqlDB}
	invoices := repositories.InvoiceRepo{DB: sqlDB}
	customers := repositories.CustomerRepo{DB: sqlDB}
	users := repositories.UserRepo{DB: sqlDB}

	settings := &services.Settings{
		Store: repositories.SettingRepo{DB: sqlDB},
		Log:   log,
	}
	pricing := services.PricingService{Rates: rates, Settings: settings}
	bookingSvc := services.BookingService{
		Bookings:    bookings,
		Trips:       trips,
		Assignments: assignments,
		Fleet:       fleet,
		Customers:   customers,
		Invoices:    invoices,
		Pricing:     pricing,
		Settings:    settings,
		Log:         log,
	}
	availability := services.AvailabilityService{
		Fleet:    fleet,
		Rates:    rates,
		Trips:    trips,
		Settings: settings,
		Log:      log,
	}
	dispatch := services.DispatchService{
		Bookings:    bookings,
		Trips:       trips,
		Fleet:       fleet,
		Assignments: assignments,
		Invoices:    invoices,
		Rates:       rates,
		Settings:    settings,
		Log:         log,
	}
	workOrders := services.WorkOrderService{
		Bookings:    bookings,
		Trips:       trips,
		Assignments: assignments,
		Fleet:       fleet,
		Customers:   customers,
	}

	bookingHandler := handlers.BookingHandler{Bookings: bookingSvc, Pricing: pricing}
	dispatchHandler := handlers.DispatchHandler{
		Dispatch:     dispatch,
		Availability: availability,
		WorkOrders:   workOrders,
	}
	authHandler := handlers.AuthHandler{
		Users:     users,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  time.Duration(cfg.JWTTTLHours) * time.Hour,
	}
	systemHandler := handlers.SystemHandler{DB: sqlDB}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.CORS())

	api := r.Group("/api")
	api.GET("/health", systemHandler.Health)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(cfg.JWTSecret))

	authed.GET("/bookings", bookingHandler.List)
	authed.POST("/bookings", bookingHandler.Create)
	authed.GET("/bookings/:id", bookingHandler.Get)
	authed.PUT("/bookings/:id", bookingHandler.Update)
	authed.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus)
	authed.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	authed.POST("/bookings/:id/payments", bookingHandler.AddPayment)
	authed.POST("/bookings/calculate-price", bookingHandler.CalculatePrice)
	authed.POST("/bookings/check-availability", dispatchHandler.CheckAvailability)

	authed.GET("/dispatch/pending", dispatchHandler.Pending)
	authed.POST("/dispatch/assign", dispatchHandler.Assign)
	authed.POST("/dispatch/unassign", dispatchHandler.Unassign)
	authed.POST("/dispatch/reassign", dispatchHandler.Reassign)

	authed.GET("/trips/:id/work-order", dispatchHandler.WorkOrder)

	return r
}
