package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
	"github.com/Ghost-ofc/peru-reservas/internal/repository"
	"github.com/Ghost-ofc/peru-reservas/internal/ticket"
)

const slotMachuOct14 = "dest_001_2025-10-14"

func TestCreateReservation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	res, err := e.booking.Create(ctx, 7, slotMachuOct14, 3)
	require.NoError(t, err)

	assert.Equal(t, model.StatePendingPayment, res.State)
	assert.Equal(t, uint64(7), res.UserID)
	assert.Equal(t, slotMachuOct14, res.SlotID)
	assert.Equal(t, "dest_001", res.DestinationID)
	assert.Equal(t, 3, res.Pax)
	assert.Equal(t, uint32(35000), res.UnitPriceCents)
	assert.Equal(t, uint32(105000), res.TotalPriceCents)
	assert.Nil(t, res.ConfirmationCode)
	assert.Nil(t, res.CheckInToken)

	remaining, err := e.booking.Remaining(ctx, slotMachuOct14)
	require.NoError(t, err)
	assert.Equal(t, 12, remaining, "3 of 15 seats should be held")
}

func TestCreateReservationValidation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.booking.Create(ctx, 1, slotMachuOct14, 0)
	assert.ErrorIs(t, err, repository.ErrInvalidPax)

	_, err = e.booking.Create(ctx, 1, "not-a-slot", 2)
	assert.ErrorIs(t, err, repository.ErrInvalidSlot)

	_, err = e.booking.Create(ctx, 1, "dest_999_2025-10-14", 2)
	assert.ErrorIs(t, err, repository.ErrDestinationNotFound)
}

func TestCreateReservationCapacityExhausted(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.booking.Create(ctx, 1, slotMachuOct14, 14)
	require.NoError(t, err)

	_, err = e.booking.Create(ctx, 2, slotMachuOct14, 2)
	assert.ErrorIs(t, err, repository.ErrInsufficientCapacity)

	// The failed attempt must not have eaten seats.
	remaining, err := e.booking.Remaining(ctx, slotMachuOct14)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	_, err = e.booking.Create(ctx, 3, slotMachuOct14, 1)
	assert.NoError(t, err, "the last seat is still bookable")
}

func TestConcurrentCreateNeverOversells(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	const slot = "dest_002_2025-11-01" // capacity 20
	const workers = 50

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.booking.Create(ctx, uint64(i+1), slot, 1)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, repository.ErrInsufficientCapacity)
		}
	}
	assert.Equal(t, 20, won, "exactly capacity winners")

	remaining, err := e.booking.Remaining(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestConfirmPayment(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	res, err := e.booking.Create(ctx, 7, slotMachuOct14, 2)
	require.NoError(t, err)

	got, err := e.booking.ConfirmPayment(ctx, res.ID, "CARD")
	require.NoError(t, err)

	assert.Equal(t, model.StateConfirmed, got.State)
	require.NotNil(t, got.ConfirmationCode)
	assert.Len(t, *got.ConfirmationCode, 12)
	require.NotNil(t, got.CheckInToken)
	assert.Equal(t, ticket.Prefix+res.ID, *got.CheckInToken)
	require.NotNil(t, got.PaymentRef)
	assert.Equal(t, "txn-"+res.ID, *got.PaymentRef)

	evs := e.publisher.confirmedEvents()
	require.Len(t, evs, 1)
	assert.Equal(t, res.ID, evs[0].ReservationID)
	assert.Equal(t, "Machu Picchu Full Day", evs[0].DestinationName)
	assert.Equal(t, "2025-10-14", evs[0].TourDate)
	assert.Equal(t, uint32(70000), evs[0].TotalPriceCents)

	// Confirmation does not change occupancy; the seats were held at create.
	remaining, err := e.booking.Remaining(ctx, slotMachuOct14)
	require.NoError(t, err)
	assert.Equal(t, 13, remaining)
}

func TestConfirmPaymentReplayRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	res, err := e.booking.Create(ctx, 7, slotMachuOct14, 2)
	require.NoError(t, err)

	first, err := e.booking.ConfirmPayment(ctx, res.ID, "CARD")
	require.NoError(t, err)

	_, err = e.booking.ConfirmPayment(ctx, res.ID, "CARD")
	assert.ErrorIs(t, err, repository.ErrAlreadyFinalized)

	// The original confirmation is untouched.
	again, err := e.reservations.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.ConfirmationCode, *again.ConfirmationCode)
	assert.Len(t, e.publisher.confirmedEvents(), 1)
}

func TestConfirmPaymentDeclinedCancelsAndReleases(t *testing.T) {
	e := newEnv("BROKEN_CARD")
	ctx := context.Background()

	res, err := e.booking.Create(ctx, 7, slotMachuOct14, 5)
	require.NoError(t, err)

	_, err = e.booking.ConfirmPayment(ctx, res.ID, "BROKEN_CARD")
	assert.ErrorIs(t, err, repository.ErrPaymentFailure)

	got, err := e.reservations.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateCancelled, got.State)
	assert.Nil(t, got.CheckInToken)

	remaining, err := e.booking.Remaining(ctx, slotMachuOct14)
	require.NoError(t, err)
	assert.Equal(t, 15, remaining, "declined payment returns all seats")

	assert.Empty(t, e.publisher.confirmedEvents())
}

func TestCancelReleasesSeatsOnce(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	res, err := e.booking.Create(ctx, 7, slotMachuOct14, 4)
	require.NoError(t, err)

	require.NoError(t, e.booking.Cancel(ctx, res.ID))

	remaining, err := e.booking.Remaining(ctx, slotMachuOct14)
	require.NoError(t, err)
	assert.Equal(t, 15, remaining)

	// Idempotent: a second cancel succeeds but must not release again.
	require.NoError(t, e.booking.Cancel(ctx, res.ID))
	remaining, err = e.booking.Remaining(ctx, slotMachuOct14)
	require.NoError(t, err)
	assert.Equal(t, 15, remaining)
}

func TestCancelConfirmedReservation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	res, err := e.booking.Create(ctx, 7, slotMachuOct14, 2)
	require.NoError(t, err)
	_, err = e.booking.ConfirmPayment(ctx, res.ID, "CARD")
	require.NoError(t, err)

	require.NoError(t, e.booking.Cancel(ctx, res.ID))

	got, err := e.reservations.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateCancelled, got.State)

	remaining, err := e.booking.Remaining(ctx, slotMachuOct14)
	require.NoError(t, err)
	assert.Equal(t, 15, remaining)
}

func TestCancelAfterCheckInRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	res, err := e.booking.Create(ctx, 7, slotMachuOct14, 2)
	require.NoError(t, err)
	confirmed, err := e.booking.ConfirmPayment(ctx, res.ID, "CARD")
	require.NoError(t, err)

	_, err = e.checkin.Process(ctx, *confirmed.CheckInToken, slotMachuOct14, 99)
	require.NoError(t, err)

	err = e.booking.Cancel(ctx, res.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyCheckedIn)

	// Seats stay committed for the boarded party.
	remaining, err := e.booking.Remaining(ctx, slotMachuOct14)
	require.NoError(t, err)
	assert.Equal(t, 13, remaining)
}

func TestRemainingForUntouchedSlot(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	remaining, err := e.booking.Remaining(ctx, "dest_002_2025-12-24")
	require.NoError(t, err)
	assert.Equal(t, 20, remaining, "a slot nobody booked reports full capacity")

	_, err = e.booking.Remaining(ctx, "bogus")
	assert.ErrorIs(t, err, repository.ErrInvalidSlot)

	_, err = e.booking.Remaining(ctx, "dest_999_2025-12-24")
	assert.ErrorIs(t, err, repository.ErrDestinationNotFound)
}

func TestFullLifecycle(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	// Two parties book the same departure.
	first, err := e.booking.Create(ctx, 1, slotMachuOct14, 6)
	require.NoError(t, err)
	second, err := e.booking.Create(ctx, 2, slotMachuOct14, 6)
	require.NoError(t, err)

	// First pays, second abandons and is swept.
	confirmed, err := e.booking.ConfirmPayment(ctx, first.ID, "CARD")
	require.NoError(t, err)
	require.NoError(t, e.booking.Cancel(ctx, second.ID))

	remaining, err := e.booking.Remaining(ctx, slotMachuOct14)
	require.NoError(t, err)
	assert.Equal(t, 9, remaining)

	// The freed seats are bookable again.
	third, err := e.booking.Create(ctx, 3, slotMachuOct14, 9)
	require.NoError(t, err)
	assert.Equal(t, model.StatePendingPayment, third.State)

	// The confirmed party boards.
	boarded, err := e.checkin.Process(ctx, *confirmed.CheckInToken, slotMachuOct14, 42)
	require.NoError(t, err)
	assert.Equal(t, first.ID, boarded.ID)
}
