// Package payment defines the contract the booking lifecycle consumes to
// charge a payment method, plus a sandbox implementation for environments
// without a real processor. The engine only cares about the outcome shape:
// approved or not, and a transaction reference when approved.
package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ChargeRequest describes a single charge attempt for a booking.
type ChargeRequest struct {
	BookingID   string // reservation the charge belongs to
	AmountCents uint32 // amount fixed at reservation creation
	Method      string // payment method chosen by the customer
}

// ChargeResult is the gateway's verdict. A non-approved result is a normal
// business outcome, not an error; transport or processor failures are
// returned as errors instead.
type ChargeResult struct {
	Approved      bool
	TransactionID string
}

// Gateway charges a payment method. Implementations may block on network
// calls; the context carries the caller's deadline.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// SandboxGateway approves every charge except for methods it was told to
// decline. It is the default gateway in dev and test environments.
type SandboxGateway struct {
	decline map[string]bool
}

// NewSandboxGateway builds a sandbox gateway that declines the given
// payment methods (case-insensitive) and approves everything else.
func NewSandboxGateway(declineMethods ...string) *SandboxGateway {
	d := make(map[string]bool, len(declineMethods))
	for _, m := range declineMethods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			d[m] = true
		}
	}
	return &SandboxGateway{decline: d}
}

// Charge implements Gateway. Approved charges receive a fresh transaction
// reference; declined ones carry none.
func (g *SandboxGateway) Charge(_ context.Context, req ChargeRequest) (ChargeResult, error) {
	if g.decline[strings.ToUpper(strings.TrimSpace(req.Method))] {
		return ChargeResult{Approved: false}, nil
	}
	return ChargeResult{Approved: true, TransactionID: uuid.NewString()}, nil
}
