package main // Entry point package

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Ghost-ofc/peru-reservas/internal/config"
	"github.com/Ghost-ofc/peru-reservas/internal/database"
	"github.com/Ghost-ofc/peru-reservas/internal/handler"
	"github.com/Ghost-ofc/peru-reservas/internal/payment"
	"github.com/Ghost-ofc/peru-reservas/internal/queue"
	"github.com/Ghost-ofc/peru-reservas/internal/repository"
	"github.com/Ghost-ofc/peru-reservas/internal/router"
	"github.com/Ghost-ofc/peru-reservas/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	// Redis backs the rate limiter and the catalog cache. A nil client
	// disables both; the engine itself never depends on Redis.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	slots := repository.NewSlotRepo(db)
	reservations := repository.NewReservationRepo(db)
	checkins := repository.NewCheckInRepo(db)
	destinations := repository.NewDestinationRepo(db)
	users := repository.NewUserRepo(db)

	gateway := payment.NewSandboxGateway(splitMethods(cfg.DeclineMethods)...)
	publisher := service.NewAMQPPublisher()

	// Booking and check-in must serialize on the same per-reservation keys.
	locks := service.NewKeyLock()
	booking := service.NewBookingService(slots, reservations, checkins, destinations, gateway, publisher, locks)
	checkin := service.NewCheckInService(reservations, checkins, publisher, locks)

	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users),
		Catalog:      handler.NewCatalogHandler(destinations),
		Availability: handler.NewAvailabilityHandler(booking),
		Booking:      handler.NewBookingHandler(booking, reservations),
		CheckIn:      handler.NewCheckInHandler(checkin),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func splitMethods(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
