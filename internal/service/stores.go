// Package service implements the booking lifecycle and check-in
// validation on top of narrow store contracts. The services are handed
// explicit store instances at construction; concurrency correctness comes
// from each store operation being atomic (guarded updates, unique keys)
// plus a per-reservation lock for the transitions that span two stores.
package service

import (
	"context"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
	"github.com/Ghost-ofc/peru-reservas/internal/queue"
)

// SlotStore is the inventory contract. Reserve must be atomic with respect
// to concurrent Reserve/Release calls on the same slot: either all pax
// seats are taken or repository.ErrInsufficientCapacity is returned with no
// mutation. Ensure must not race-create duplicate slots, and Remaining must
// reflect the latest committed value.
type SlotStore interface {
	Ensure(ctx context.Context, key model.SlotKey, capacity int) (*model.TourSlot, error)
	Reserve(ctx context.Context, slotID string, pax int) error
	Release(ctx context.Context, slotID string, pax int) error
	Remaining(ctx context.Context, slotID string) (int, error)
}

// ReservationStore persists reservations. MarkConfirmed must only succeed
// from PENDING_PAYMENT (repository.ErrAlreadyFinalized otherwise) and
// MarkCancelled must report whether this call performed the transition so
// seats are released at most once.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, reservationID string) (*model.Reservation, error)
	GetByConfirmationCode(ctx context.Context, code string) (*model.Reservation, error)
	MarkConfirmed(ctx context.Context, reservationID, code, token, method, paymentRef string) error
	MarkCancelled(ctx context.Context, reservationID string) (bool, error)
}

// CheckInStore persists boarding records. Insert must admit at most one
// record per reservation, returning repository.ErrAlreadyCheckedIn for any
// later attempt, even a concurrent one.
type CheckInStore interface {
	Insert(ctx context.Context, rec *model.CheckInRecord) error
	Exists(ctx context.Context, reservationID string) (bool, error)
}

// DestinationStore resolves catalog entries for pricing and slot capacity.
type DestinationStore interface {
	GetByID(ctx context.Context, destinationID string) (*model.Destination, error)
}

// EventPublisher emits domain events after successful transitions. Publish
// failures are logged by implementations and never fail the transition
// that already committed.
type EventPublisher interface {
	ReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
	CheckInRecorded(ctx context.Context, ev queue.CheckInRecordedEvent) error
}
