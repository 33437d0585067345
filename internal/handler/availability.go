package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ghost-ofc/peru-reservas/internal/repository"
	"github.com/Ghost-ofc/peru-reservas/internal/service"
)

// AvailabilityHandler reports live seat counts. This route is deliberately
// never cached: the remaining count must reflect the database at read time.
type AvailabilityHandler struct {
	Booking *service.BookingService
}

func NewAvailabilityHandler(b *service.BookingService) *AvailabilityHandler {
	return &AvailabilityHandler{Booking: b}
}

// Get: remaining seats for a slot. A slot nobody has booked yet reports
// the destination's full capacity.
func (h *AvailabilityHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slotID := c.Param("id")
	remaining, err := h.Booking.Remaining(ctx, slotID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidSlot):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot_id"})
		case errors.Is(err, repository.ErrDestinationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "destination not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"slot_id":   slotID,
		"remaining": remaining,
	})
}
