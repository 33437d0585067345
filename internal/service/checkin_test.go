package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
	"github.com/Ghost-ofc/peru-reservas/internal/repository"
)

// confirmedReservation books and pays for a reservation, returning it in
// CONFIRMED state with its token and code populated.
func confirmedReservation(t *testing.T, e *env, userID uint64, slotID string, pax int) *model.Reservation {
	t.Helper()
	res, err := e.booking.Create(context.Background(), userID, slotID, pax)
	require.NoError(t, err)
	res, err = e.booking.ConfirmPayment(context.Background(), res.ID, "CARD")
	require.NoError(t, err)
	return res
}

func TestCheckInWithStructuredToken(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	res := confirmedReservation(t, e, 7, slotMachuOct14, 3)

	got, err := e.checkin.Process(ctx, *res.CheckInToken, slotMachuOct14, 42)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, 3, got.Pax)

	evs := e.publisher.checkInEvents()
	require.Len(t, evs, 1)
	assert.Equal(t, res.ID, evs[0].ReservationID)
	assert.Equal(t, uint64(42), evs[0].GuideID)
	assert.Equal(t, 3, evs[0].Pax)
}

func TestCheckInWithLegacyConfirmationCode(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	res := confirmedReservation(t, e, 7, slotMachuOct14, 2)

	// A bare confirmation code typed in by the guide, no prefix.
	got, err := e.checkin.Process(ctx, *res.ConfirmationCode, slotMachuOct14, 42)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
}

func TestCheckInReplayRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	res := confirmedReservation(t, e, 7, slotMachuOct14, 2)

	_, err := e.checkin.Process(ctx, *res.CheckInToken, slotMachuOct14, 42)
	require.NoError(t, err)

	_, err = e.checkin.Process(ctx, *res.CheckInToken, slotMachuOct14, 42)
	assert.ErrorIs(t, err, repository.ErrAlreadyCheckedIn)

	// The legacy path resolves to the same reservation and fails the same way.
	_, err = e.checkin.Process(ctx, *res.ConfirmationCode, slotMachuOct14, 43)
	assert.ErrorIs(t, err, repository.ErrAlreadyCheckedIn)

	assert.Len(t, e.publisher.checkInEvents(), 1)
}

func TestConcurrentDoubleScanAdmitsOne(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	res := confirmedReservation(t, e, 7, slotMachuOct14, 2)

	const scans = 10
	var wg sync.WaitGroup
	errs := make([]error, scans)
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.checkin.Process(ctx, *res.CheckInToken, slotMachuOct14, uint64(100+i))
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, repository.ErrAlreadyCheckedIn)
		}
	}
	assert.Equal(t, 1, won, "exactly one scan may board the party")
	assert.Len(t, e.publisher.checkInEvents(), 1)
}

func TestCheckInTourMismatch(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	res := confirmedReservation(t, e, 7, slotMachuOct14, 2)

	_, err := e.checkin.Process(ctx, *res.CheckInToken, "dest_002_2025-10-14", 42)
	assert.ErrorIs(t, err, repository.ErrTourMismatch)

	// The mismatch must not consume the token.
	_, err = e.checkin.Process(ctx, *res.CheckInToken, slotMachuOct14, 42)
	assert.NoError(t, err)
}

func TestCheckInCancelledReservation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	res := confirmedReservation(t, e, 7, slotMachuOct14, 2)
	require.NoError(t, e.booking.Cancel(ctx, res.ID))

	_, err := e.checkin.Process(ctx, *res.CheckInToken, slotMachuOct14, 42)
	assert.ErrorIs(t, err, repository.ErrReservationCancelled)
}

func TestCheckInPendingReservationRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	res, err := e.booking.Create(ctx, 7, slotMachuOct14, 2)
	require.NoError(t, err)

	// A forged token naming an unpaid reservation carries no boarding right.
	_, err = e.checkin.Process(ctx, "RESERVA:"+res.ID, slotMachuOct14, 42)
	assert.ErrorIs(t, err, repository.ErrInvalidToken)
}

func TestCheckInBadInput(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.checkin.Process(ctx, "", slotMachuOct14, 42)
	assert.ErrorIs(t, err, repository.ErrInvalidToken)

	_, err = e.checkin.Process(ctx, "RESERVA:", slotMachuOct14, 42)
	assert.ErrorIs(t, err, repository.ErrInvalidToken)

	_, err = e.checkin.Process(ctx, "RESERVA:no-such-id", slotMachuOct14, 42)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
}
