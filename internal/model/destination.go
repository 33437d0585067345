package model

import "time"

// Destination describes a tour offering that departs on many dates.
// It carries the two values the booking engine needs at reservation
// time: the per-seat price and the seat capacity every departure slot
// is created with.
//
// Fields:
//  ID             – textual identifier (e.g. "dest_001").
//  Name           – display name of the tour.
//  Region         – geographic region, informational.
//  UnitPriceCents – price per seat in cents.
//  SlotCapacity   – capacity assigned to each lazily created slot.
//  CreatedAt      – creation timestamp.
type Destination struct {
	ID             string    // destinations.destination_id
	Name           string    // destinations.name
	Region         string    // destinations.region
	UnitPriceCents uint32    // destinations.unit_price_cents
	SlotCapacity   int       // destinations.slot_capacity
	CreatedAt      time.Time // destinations.created_at
}
