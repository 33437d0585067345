package model

import "time"

// CheckInStatusConfirmed is the status written for a successful boarding.
const CheckInStatusConfirmed = "CONFIRMED"

// CheckInRecord is the proof that a reservation's party physically
// boarded the tour. At most one record may ever exist per reservation
// (enforced by a unique key on reservation_id); its existence is the
// single source of truth for "this token has been used". Records are
// never mutated or deleted.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation that was checked in (unique).
//  GuideID       – guide who scanned the token.
//  CheckedInAt   – scan timestamp, UTC.
//  Status        – check-in status, currently always CONFIRMED.
type CheckInRecord struct {
	ID            uint64    // check_ins.check_in_id
	ReservationID string    // check_ins.reservation_id
	GuideID       uint64    // check_ins.guide_id
	CheckedInAt   time.Time // check_ins.checked_in_at
	Status        string    // check_ins.status
}
