// Package repository implements durable storage for slots, reservations
// and check-in records on top of database/sql. This file collects the
// sentinel errors shared across repositories and services. Handlers match
// them with errors.Is and translate each kind to a distinct HTTP response:
// a lost seat race, a replayed ticket and a wrong-tour scan are different
// business outcomes and must never collapse into a generic failure.
package repository

import "errors"

// ErrInvalidSlot is returned when a slot identifier is malformed or does
// not parse into a destination+date key.
var ErrInvalidSlot = errors.New("invalid slot identifier")

// ErrInvalidPax is returned when a reservation requests fewer than one seat.
var ErrInvalidPax = errors.New("pax must be at least 1")

// ErrSlotNotFound is returned when a slot row does not exist. Availability
// callers may treat this as "not yet created" since slots are made lazily.
var ErrSlotNotFound = errors.New("slot not found")

// ErrInsufficientCapacity is returned when a reserve would push occupancy
// past capacity. No mutation happens in that case.
var ErrInsufficientCapacity = errors.New("insufficient capacity")

// ErrDestinationNotFound is returned when a destination id does not resolve.
var ErrDestinationNotFound = errors.New("destination not found")

// ErrReservationNotFound is returned when a reservation id (or legacy
// confirmation code) does not resolve to a persisted reservation.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrAlreadyFinalized is returned when a payment confirmation arrives for
// a reservation that already left PENDING_PAYMENT. It guards against
// duplicate confirmation calls and confirmations racing a cancellation.
var ErrAlreadyFinalized = errors.New("reservation already finalized")

// ErrPaymentFailure is returned when the gateway declines a charge. The
// reservation is cancelled and its seats released; the engine keeps running.
var ErrPaymentFailure = errors.New("payment declined")

// ErrAlreadyCheckedIn is returned when a check-in record already exists
// for the reservation, either on a replayed token scan or on an attempt
// to cancel a reservation whose party already boarded.
var ErrAlreadyCheckedIn = errors.New("reservation already checked in")

// ErrReservationCancelled is returned when a token for a cancelled
// reservation is scanned; such tokens are permanently invalid.
var ErrReservationCancelled = errors.New("reservation is cancelled")

// ErrTourMismatch is returned when a scanned token is valid but belongs to
// a different departure than the one the guide is boarding.
var ErrTourMismatch = errors.New("token belongs to a different tour")

// ErrInvalidToken is returned when a scanned token cannot yield a
// reservation identifier candidate at all.
var ErrInvalidToken = errors.New("invalid check-in token")

// ErrEmailExists is returned when registering an email already in use.
var ErrEmailExists = errors.New("email already exists")
