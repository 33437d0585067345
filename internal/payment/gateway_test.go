package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxGatewayApproves(t *testing.T) {
	g := NewSandboxGateway()
	res, err := g.Charge(context.Background(), ChargeRequest{BookingID: "r1", AmountCents: 1500, Method: "CARD"})
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.NotEmpty(t, res.TransactionID)
}

func TestSandboxGatewayDeclinesConfiguredMethods(t *testing.T) {
	g := NewSandboxGateway("broken_card")
	res, err := g.Charge(context.Background(), ChargeRequest{BookingID: "r1", AmountCents: 1500, Method: "BROKEN_CARD"})
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Empty(t, res.TransactionID)
}
