package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
	"github.com/Ghost-ofc/peru-reservas/internal/queue"
	"github.com/Ghost-ofc/peru-reservas/internal/repository"
	"github.com/Ghost-ofc/peru-reservas/internal/ticket"
)

// CheckInService validates scanned tokens at boarding time and records the
// check-in. A reservation can be checked in at most once: the existence of
// its CheckInRecord is the sole source of truth for "this token was used",
// and the store's unique key makes the final insert the arbiter when two
// guides scan the same token simultaneously.
type CheckInService struct {
	reservations ReservationStore
	checkins     CheckInStore
	publisher    EventPublisher
	locks        *KeyLock
	now          func() time.Time
}

// NewCheckInService constructs a CheckInService. The KeyLock must be the
// instance shared with the booking service.
func NewCheckInService(reservations ReservationStore, checkins CheckInStore, publisher EventPublisher, locks *KeyLock) *CheckInService {
	if reservations == nil || checkins == nil || publisher == nil || locks == nil {
		panic("nil dependency passed to NewCheckInService")
	}
	return &CheckInService{
		reservations: reservations,
		checkins:     checkins,
		publisher:    publisher,
		locks:        locks,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Process resolves a scanned token to a reservation, enforces tour
// membership and single use, and records the boarding. The raw input may
// be a structured "RESERVA:<id>" token or, on the legacy path, a bare
// confirmation code; both resolve through the same lookup sequence.
func (s *CheckInService) Process(ctx context.Context, rawToken, tourID string, guideID uint64) (*model.Reservation, error) {
	candidate := ticket.Decode(rawToken)
	if candidate == "" {
		return nil, repository.ErrInvalidToken
	}

	res, err := s.reservations.GetByID(ctx, candidate)
	if errors.Is(err, repository.ErrReservationNotFound) {
		res, err = s.reservations.GetByConfirmationCode(ctx, candidate)
	}
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock("reservation:" + res.ID)
	defer unlock()

	// Re-read under the lock so a cancellation that won the race is seen.
	res, err = s.reservations.GetByID(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	switch res.State {
	case model.StateCancelled:
		return nil, repository.ErrReservationCancelled
	case model.StateConfirmed:
	default:
		// PENDING_PAYMENT: no token has been issued for this reservation yet.
		return nil, repository.ErrInvalidToken
	}
	if res.SlotID != tourID {
		return nil, repository.ErrTourMismatch
	}

	rec := &model.CheckInRecord{
		ReservationID: res.ID,
		GuideID:       guideID,
		CheckedInAt:   s.now(),
		Status:        model.CheckInStatusConfirmed,
	}
	if err := s.checkins.Insert(ctx, rec); err != nil {
		return nil, err
	}

	if pubErr := s.publisher.CheckInRecorded(ctx, queue.CheckInRecordedEvent{
		ReservationID: res.ID,
		SlotID:        res.SlotID,
		GuideID:       guideID,
		Pax:           res.Pax,
		CheckedInAt:   rec.CheckedInAt.Format(time.RFC3339),
	}); pubErr != nil {
		log.Printf("checkin: publish recorded event for %s: %v", res.ID, pubErr)
	}
	return res, nil
}
