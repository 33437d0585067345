package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ghost-ofc/peru-reservas/internal/repository"
	"github.com/Ghost-ofc/peru-reservas/internal/service"
)

// CheckInHandler is the guide-facing boarding endpoint. The guide scans a
// QR token (or types a confirmation code on the legacy path) against the
// tour they are running; the service enforces single use.
type CheckInHandler struct {
	CheckIn *service.CheckInService
}

func NewCheckInHandler(s *service.CheckInService) *CheckInHandler {
	return &CheckInHandler{CheckIn: s}
}

type checkInReq struct {
	Token  string `json:"token"`
	TourID string `json:"tour_id"`
}

// Create: validate the scanned token and record the boarding.
func (h *CheckInHandler) Create(c echo.Context) error {
	guideID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.TourID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tour_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.CheckIn.Process(ctx, req.Token, req.TourID, guideID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidToken):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
		case errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrTourMismatch):
			return c.JSON(http.StatusConflict, echo.Map{"error": "token belongs to a different tour"})
		case errors.Is(err, repository.ErrAlreadyCheckedIn):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already checked in"})
		case errors.Is(err, repository.ErrReservationCancelled):
			return c.JSON(http.StatusGone, echo.Map{"error": "reservation was cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id": res.ID,
		"slot_id":        res.SlotID,
		"pax":            res.Pax,
		"status":         "CHECKED_IN",
	})
}
