package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
	"github.com/Ghost-ofc/peru-reservas/internal/payment"
	"github.com/Ghost-ofc/peru-reservas/internal/queue"
	"github.com/Ghost-ofc/peru-reservas/internal/repository"
	"github.com/Ghost-ofc/peru-reservas/internal/ticket"
)

// BookingService drives a reservation through its lifecycle: seats are
// locked pessimistically at creation time, payment confirmation moves the
// reservation to CONFIRMED and issues the check-in token, and cancellation
// (explicit or payment-triggered) returns the seats to the slot.
type BookingService struct {
	slots        SlotStore
	reservations ReservationStore
	checkins     CheckInStore
	destinations DestinationStore
	gateway      payment.Gateway
	publisher    EventPublisher
	locks        *KeyLock
	now          func() time.Time
}

// NewBookingService constructs a BookingService. All dependencies must be
// non-nil; the shared KeyLock must be the same instance handed to the
// check-in service so both serialize on the same per-reservation keys.
func NewBookingService(slots SlotStore, reservations ReservationStore, checkins CheckInStore, destinations DestinationStore, gateway payment.Gateway, publisher EventPublisher, locks *KeyLock) *BookingService {
	if slots == nil || reservations == nil || checkins == nil || destinations == nil || gateway == nil || publisher == nil || locks == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{
		slots:        slots,
		reservations: reservations,
		checkins:     checkins,
		destinations: destinations,
		gateway:      gateway,
		publisher:    publisher,
		locks:        locks,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create locks pax seats on the slot and persists a new reservation in
// PENDING_PAYMENT. The slot is created lazily from the destination's
// capacity on first access. The total price is computed here, once, from
// the destination's current unit price. On a capacity failure nothing is
// persisted; on a persistence failure after the seat lock the seats are
// released again.
func (s *BookingService) Create(ctx context.Context, userID uint64, slotID string, pax int) (*model.Reservation, error) {
	if pax < 1 {
		return nil, repository.ErrInvalidPax
	}
	key, ok := model.ParseSlotKey(slotID)
	if !ok {
		return nil, repository.ErrInvalidSlot
	}
	dest, err := s.destinations.GetByID(ctx, key.DestinationID)
	if err != nil {
		return nil, err
	}

	slot, err := s.slots.Ensure(ctx, key, dest.SlotCapacity)
	if err != nil {
		return nil, err
	}
	if err := s.slots.Reserve(ctx, slot.SlotID, pax); err != nil {
		return nil, err
	}

	res := &model.Reservation{
		ID:              uuid.NewString(),
		UserID:          userID,
		SlotID:          slot.SlotID,
		DestinationID:   dest.ID,
		Pax:             pax,
		UnitPriceCents:  dest.UnitPriceCents,
		TotalPriceCents: dest.UnitPriceCents * uint32(pax),
		State:           model.StatePendingPayment,
		CreatedAt:       s.now(),
		UpdatedAt:       s.now(),
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		// The seats were already taken; give them back before failing.
		if relErr := s.slots.Release(ctx, slot.SlotID, pax); relErr != nil {
			log.Printf("booking: release after failed create for slot %s: %v", slot.SlotID, relErr)
		}
		return nil, err
	}
	return res, nil
}

// ConfirmPayment charges the reservation's fixed total and finalizes the
// lifecycle: an approved charge yields CONFIRMED with a confirmation code
// and check-in token, a declined one yields CANCELLED with the seats
// released and ErrPaymentFailure. Replayed calls fail with
// ErrAlreadyFinalized and change nothing.
func (s *BookingService) ConfirmPayment(ctx context.Context, reservationID, method string) (*model.Reservation, error) {
	unlock := s.locks.Lock("reservation:" + reservationID)
	defer unlock()

	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.State != model.StatePendingPayment {
		return nil, repository.ErrAlreadyFinalized
	}

	outcome, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		BookingID:   res.ID,
		AmountCents: res.TotalPriceCents, // fixed at creation, never recomputed
		Method:      method,
	})
	if err != nil {
		return nil, err
	}
	if !outcome.Approved {
		changed, cErr := s.reservations.MarkCancelled(ctx, res.ID)
		if cErr != nil {
			return nil, cErr
		}
		if changed {
			if relErr := s.slots.Release(ctx, res.SlotID, res.Pax); relErr != nil {
				log.Printf("booking: release after declined payment for %s: %v", res.ID, relErr)
			}
		}
		return nil, repository.ErrPaymentFailure
	}

	code, err := newConfirmationCode()
	if err != nil {
		return nil, err
	}
	token := ticket.Issue(res.ID)
	if err := s.reservations.MarkConfirmed(ctx, res.ID, code, token, method, outcome.TransactionID); err != nil {
		return nil, err
	}

	res, err = s.reservations.GetByID(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID:    res.ID,
		UserID:           res.UserID,
		SlotID:           res.SlotID,
		DestinationID:    res.DestinationID,
		Pax:              res.Pax,
		TotalPriceCents:  res.TotalPriceCents,
		ConfirmationCode: code,
		ConfirmedAt:      s.now().Format(time.RFC3339),
	}
	if key, ok := model.ParseSlotKey(res.SlotID); ok {
		ev.TourDate = key.Date.Format(model.SlotDateLayout)
		if dest, dErr := s.destinations.GetByID(ctx, key.DestinationID); dErr == nil {
			ev.DestinationName = dest.Name
		}
	}
	if pubErr := s.publisher.ReservationConfirmed(ctx, ev); pubErr != nil {
		log.Printf("booking: publish confirmed event for %s: %v", res.ID, pubErr)
	}
	return res, nil
}

// Cancel releases the reservation's seats and marks it CANCELLED. It is
// accepted at any time before check-in, including from external sweepers
// reaping stale PENDING_PAYMENT reservations, and is idempotent: repeating
// it on an already-cancelled reservation succeeds without releasing seats
// again. A reservation whose party already boarded cannot be cancelled.
func (s *BookingService) Cancel(ctx context.Context, reservationID string) error {
	unlock := s.locks.Lock("reservation:" + reservationID)
	defer unlock()

	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	used, err := s.checkins.Exists(ctx, res.ID)
	if err != nil {
		return err
	}
	if used {
		return repository.ErrAlreadyCheckedIn
	}
	changed, err := s.reservations.MarkCancelled(ctx, res.ID)
	if err != nil {
		return err
	}
	if changed {
		if relErr := s.slots.Release(ctx, res.SlotID, res.Pax); relErr != nil {
			log.Printf("booking: release after cancel for %s: %v", res.ID, relErr)
		}
	}
	return nil
}

// Remaining reports how many seats are left on a slot. A slot that was
// never reserved against does not exist yet, in which case the
// destination's full capacity is reported.
func (s *BookingService) Remaining(ctx context.Context, slotID string) (int, error) {
	key, ok := model.ParseSlotKey(slotID)
	if !ok {
		return 0, repository.ErrInvalidSlot
	}
	remaining, err := s.slots.Remaining(ctx, key.String())
	if errors.Is(err, repository.ErrSlotNotFound) {
		dest, dErr := s.destinations.GetByID(ctx, key.DestinationID)
		if dErr != nil {
			return 0, dErr
		}
		return dest.SlotCapacity, nil
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// newConfirmationCode returns a short uppercase code unique enough to hand
// to customers and usable as the legacy check-in fallback.
func newConfirmationCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
