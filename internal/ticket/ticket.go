// Package ticket encodes and decodes the check-in token embedded in a
// reservation's QR symbol. The codec is a pure, reversible string
// transformation with no state and no failure modes of its own; whether a
// decoded candidate actually resolves to a reservation is the caller's
// responsibility.
package ticket

import "strings"

// Prefix marks a structured check-in token. The value is historical: the
// mobile clients already in the field render and scan tokens in this form.
const Prefix = "RESERVA:"

// Issue returns the check-in token for a reservation identifier. The
// encoding is deterministic, so re-issuing for the same reservation always
// yields the same token.
func Issue(reservationID string) string {
	return Prefix + reservationID
}

// Decode extracts the reservation identifier candidate from a scanned
// token. A leading Prefix is stripped when present; otherwise the trimmed
// input is returned unchanged, which keeps the legacy path working where a
// guide types a bare confirmation code instead of scanning the QR.
func Decode(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), Prefix)
}
