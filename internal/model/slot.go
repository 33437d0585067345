package model

import (
	"fmt"
	"strings"
	"time"
)

// SlotDateLayout is the wire format for the date half of a slot identifier.
const SlotDateLayout = "2006-01-02"

// SlotKey is the composite identifier of a tour slot: one destination on
// one departure date. It is the only place where the textual
// "<destinationID>_<date>" form is parsed or rendered; call sites must not
// re-derive the format themselves.
type SlotKey struct {
	DestinationID string    // destination the departure belongs to
	Date          time.Time // departure date, midnight UTC
}

// ParseSlotKey parses a slot identifier of the form
// "<destinationID>_<YYYY-MM-DD>". Destination identifiers may themselves
// contain underscores (e.g. "dest_001"), so the date is taken from the last
// underscore-separated segment. The boolean result is false when the input
// does not carry a valid trailing date.
func ParseSlotKey(slotID string) (SlotKey, bool) {
	s := strings.TrimSpace(slotID)
	i := strings.LastIndex(s, "_")
	if i <= 0 || i == len(s)-1 {
		return SlotKey{}, false
	}
	date, err := time.Parse(SlotDateLayout, s[i+1:])
	if err != nil {
		return SlotKey{}, false
	}
	return SlotKey{DestinationID: s[:i], Date: date.UTC()}, true
}

// String renders the key back to its canonical "<destinationID>_<date>" form.
func (k SlotKey) String() string {
	return fmt.Sprintf("%s_%s", k.DestinationID, k.Date.UTC().Format(SlotDateLayout))
}

// TourSlot is one bookable departure of a destination's tour. It is created
// lazily on the first reservation attempt against its key and is never
// deleted afterwards; Occupied only moves through the inventory's
// reserve/release operations.
//
// Invariant: 0 <= Occupied <= Capacity at all times.
//
// Fields:
//  SlotID        – composite key, see SlotKey.
//  DestinationID – destination the departure belongs to.
//  Date          – departure date.
//  Capacity      – fixed maximum number of seats.
//  Occupied      – committed plus pending seat count.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last occupancy change.
type TourSlot struct {
	SlotID        string    // tour_slots.slot_id
	DestinationID string    // tour_slots.destination_id
	Date          time.Time // tour_slots.tour_date
	Capacity      int       // tour_slots.capacity
	Occupied      int       // tour_slots.occupied
	CreatedAt     time.Time // tour_slots.created_at
	UpdatedAt     time.Time // tour_slots.updated_at
}

// Remaining returns the number of seats still available on the slot.
func (s *TourSlot) Remaining() int {
	return s.Capacity - s.Occupied
}
