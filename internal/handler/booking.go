package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
	"github.com/Ghost-ofc/peru-reservas/internal/repository"
	"github.com/Ghost-ofc/peru-reservas/internal/service"
)

// BookingHandler exposes the reservation lifecycle to customers: create,
// pay, cancel and read back. Ownership is enforced here; the service layer
// only knows reservation ids.
type BookingHandler struct {
	Booking      *service.BookingService
	Reservations *repository.ReservationRepo
}

func NewBookingHandler(b *service.BookingService, r *repository.ReservationRepo) *BookingHandler {
	return &BookingHandler{Booking: b, Reservations: r}
}

// ----- DTOs -----

type createReservationReq struct {
	SlotID string `json:"slot_id"`
	Pax    int    `json:"pax"`
}
type payReservationReq struct {
	Method string `json:"method"`
}

type reservationResp struct {
	ID               string  `json:"id"`
	SlotID           string  `json:"slot_id"`
	DestinationID    string  `json:"destination_id"`
	Pax              int     `json:"pax"`
	UnitPriceCents   uint32  `json:"unit_price_cents"`
	TotalPriceCents  uint32  `json:"total_price_cents"`
	State            string  `json:"state"`
	ConfirmationCode *string `json:"confirmation_code,omitempty"`
	CheckInToken     *string `json:"check_in_token,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func toReservationResp(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:               r.ID,
		SlotID:           r.SlotID,
		DestinationID:    r.DestinationID,
		Pax:              r.Pax,
		UnitPriceCents:   r.UnitPriceCents,
		TotalPriceCents:  r.TotalPriceCents,
		State:            r.State,
		ConfirmationCode: r.ConfirmationCode,
		CheckInToken:     r.CheckInToken,
		CreatedAt:        r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Create: lock seats and open a reservation in PENDING_PAYMENT.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Booking.Create(ctx, uid, req.SlotID, req.Pax)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidSlot):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot_id"})
		case errors.Is(err, repository.ErrInvalidPax):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "pax must be at least 1"})
		case errors.Is(err, repository.ErrDestinationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "destination not found"})
		case errors.Is(err, repository.ErrInsufficientCapacity):
			return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// Pay: charge the fixed total and finalize the reservation.
func (h *BookingHandler) Pay(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req payReservationReq
	if err := c.Bind(&req); err != nil || req.Method == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	id := c.Param("id")
	if ok, err := h.requireOwnership(ctx, c, id, uid); !ok {
		return err
	}

	res, err := h.Booking.ConfirmPayment(ctx, id, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrAlreadyFinalized):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already finalized"})
		case errors.Is(err, repository.ErrPaymentFailure):
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment declined"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// Cancel: release the seats and mark the reservation CANCELLED. Repeating
// the call on an already-cancelled reservation succeeds.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id := c.Param("id")
	if ok, err := h.requireOwnership(ctx, c, id, uid); !ok {
		return err
	}

	if err := h.Booking.Cancel(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrAlreadyCheckedIn):
			return c.JSON(http.StatusConflict, echo.Map{"error": "party already checked in"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMine: all reservations of the authenticated user, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reservationResp, 0, len(items))
	for i := range items {
		out = append(out, toReservationResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Get: a single reservation, visible only to its owner.
func (h *BookingHandler) Get(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.UserID != uid {
		// Do not leak existence of other users' reservations.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// requireOwnership loads the reservation and verifies it belongs to uid.
// On failure it writes the response itself and reports ok=false so callers
// can bail out; err carries the write result.
func (h *BookingHandler) requireOwnership(ctx context.Context, c echo.Context, reservationID string, uid uint64) (bool, error) {
	res, err := h.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return false, c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.UserID != uid {
		// Do not leak existence of other users' reservations.
		return false, c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return true, nil
}
