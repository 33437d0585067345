package model

import "time"

// Reservation lifecycle states. A reservation is created directly in
// PENDING_PAYMENT (seats are locked at creation time) and moves to
// CONFIRMED on a successful charge or to CANCELLED on payment failure or
// explicit cancellation. No transition leaves CANCELLED.
const (
	StatePendingPayment = "PENDING_PAYMENT"
	StateConfirmed      = "CONFIRMED"
	StateCancelled      = "CANCELLED"
)

// Reservation records a user's booking of pax seats on a tour slot.
// The total price is computed once at creation from the destination's
// unit price and is never recomputed afterwards, so a later price change
// cannot drift away from an already authorized charge amount.
//
// Fields:
//  ID               – primary key, UUID generated at creation.
//  UserID           – user who made the reservation.
//  SlotID           – slot being booked (composite destination+date key).
//  DestinationID    – destination, denormalized from the slot key.
//  Pax              – number of seats, always >= 1.
//  UnitPriceCents   – per-seat price at creation time.
//  TotalPriceCents  – UnitPriceCents * Pax, fixed at creation.
//  State            – lifecycle state, see constants above.
//  PaymentMethod    – method used to pay, nil until a charge is attempted.
//  PaymentRef       – gateway transaction reference, nil until confirmed.
//  ConfirmationCode – human-facing code, nil until confirmed.
//  CheckInToken     – boarding token, nil until confirmed.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last state change.
type Reservation struct {
	ID               string    // reservations.reservation_id
	UserID           uint64    // reservations.user_id
	SlotID           string    // reservations.slot_id
	DestinationID    string    // reservations.destination_id
	Pax              int       // reservations.pax
	UnitPriceCents   uint32    // reservations.unit_price_cents
	TotalPriceCents  uint32    // reservations.total_price_cents
	State            string    // reservations.state
	PaymentMethod    *string   // reservations.payment_method (nullable)
	PaymentRef       *string   // reservations.payment_ref (nullable)
	ConfirmationCode *string   // reservations.confirmation_code (nullable)
	CheckInToken     *string   // reservations.check_in_token (nullable)
	CreatedAt        time.Time // reservations.created_at
	UpdatedAt        time.Time // reservations.updated_at
}
