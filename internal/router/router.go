package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Ghost-ofc/peru-reservas/internal/config"
	"github.com/Ghost-ofc/peru-reservas/internal/handler"
	"github.com/Ghost-ofc/peru-reservas/internal/middleware"
	"github.com/Ghost-ofc/peru-reservas/internal/model"
)

// Handlers groups every handler the router wires up.
type Handlers struct {
	Auth         *handler.AuthHandler
	Catalog      *handler.CatalogHandler
	Availability *handler.AvailabilityHandler
	Booking      *handler.BookingHandler
	CheckIn      *handler.CheckInHandler
}

// Register wires all routes onto the Echo instance.
//
// Route policy:
//   - the destination catalog is public and sits behind the Redis response
//     cache (it changes rarely),
//   - availability is public but NEVER cached, a stale remaining count
//     would contradict what the booking path enforces,
//   - booking routes require a CUSTOMER token, check-in a GUIDE token,
//   - the token-bucket limiter guards the write-heavy booking and
//     check-in routes only.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Public catalog and availability.
	e.GET("/v1/destinations", h.Catalog.List, cache)
	e.GET("/v1/destinations/:id", h.Catalog.Get, cache)
	e.GET("/v1/slots/:id/availability", h.Availability.Get)

	// Auth.
	a := e.Group("/v1/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)

	// Any authenticated user.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/me", h.Auth.Me)

	// Customer-facing reservation lifecycle.
	customer := auth.Group("", middleware.RequireRole(model.RoleCustomer))
	customer.POST("/reservations", h.Booking.Create, limit)
	customer.POST("/reservations/:id/payment", h.Booking.Pay, limit)
	customer.DELETE("/reservations/:id", h.Booking.Cancel, limit)
	customer.GET("/my-reservations", h.Booking.ListMine)
	customer.GET("/reservations/:id", h.Booking.Get)

	// Guide-facing boarding.
	guide := auth.Group("", middleware.RequireRole(model.RoleGuide))
	guide.POST("/checkins", h.CheckIn.Create, limit)
}
