// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// ReservationConfirmedEvent is published when a reservation is successfully
// paid and confirmed. It carries enough for downstream consumers to notify
// the customer or feed analytics without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID    string `json:"reservation_id"`
	UserID           uint64 `json:"user_id"`
	SlotID           string `json:"slot_id"`
	DestinationID    string `json:"destination_id"`
	DestinationName  string `json:"destination_name"`
	TourDate         string `json:"tour_date"`
	Pax              int    `json:"pax"`
	TotalPriceCents  uint32 `json:"total_price_cents"`
	ConfirmationCode string `json:"confirmation_code"`
	ConfirmedAt      string `json:"confirmed_at"`
}

// CheckInRecordedEvent is published when a guide successfully checks a
// reservation in at boarding time.
type CheckInRecordedEvent struct {
	ReservationID string `json:"reservation_id"`
	SlotID        string `json:"slot_id"`
	GuideID       uint64 `json:"guide_id"`
	Pax           int    `json:"pax"`
	CheckedInAt   string `json:"checked_in_at"`
}
