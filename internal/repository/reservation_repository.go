package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
)

// ReservationRepo provides CRUD operations for reservations. State
// transitions are guarded single UPDATE statements: the expected current
// state sits in the WHERE clause, so a replayed or racing transition
// matches zero rows instead of overwriting a finalized reservation.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `reservation_id, user_id, slot_id, destination_id, pax,
	unit_price_cents, total_price_cents, state, payment_method, payment_ref,
	confirmation_code, check_in_token, created_at, updated_at`

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	var method, ref, code, token sql.NullString
	err := row.Scan(
		&res.ID, &res.UserID, &res.SlotID, &res.DestinationID, &res.Pax,
		&res.UnitPriceCents, &res.TotalPriceCents, &res.State, &method, &ref,
		&code, &token, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if method.Valid {
		res.PaymentMethod = &method.String
	}
	if ref.Valid {
		res.PaymentRef = &ref.String
	}
	if code.Valid {
		res.ConfirmationCode = &code.String
	}
	if token.Valid {
		res.CheckInToken = &token.String
	}
	return &res, nil
}

// Create inserts a new reservation row. The caller populates ID, pricing
// and state before calling; timestamps default in the database.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (reservation_id, user_id, slot_id, destination_id, pax, unit_price_cents, total_price_cents, state)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		res.ID, res.UserID, res.SlotID, res.DestinationID, res.Pax,
		res.UnitPriceCents, res.TotalPriceCents, res.State,
	)
	return err
}

// GetByID loads a reservation. Returns ErrReservationNotFound when absent.
func (r *ReservationRepo) GetByID(ctx context.Context, reservationID string) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE reservation_id = ?`, reservationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// GetByConfirmationCode resolves the legacy check-in path where a guide
// presents the bare confirmation code instead of the structured token.
func (r *ReservationRepo) GetByConfirmationCode(ctx context.Context, code string) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE confirmation_code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// MarkConfirmed transitions PENDING_PAYMENT -> CONFIRMED, assigning the
// confirmation code, check-in token and payment details in the same
// statement. When the reservation is in any other state the UPDATE matches
// nothing and ErrAlreadyFinalized is returned, which is what makes a
// duplicated confirmation call harmless.
func (r *ReservationRepo) MarkConfirmed(ctx context.Context, reservationID, code, token, method, paymentRef string) error {
	const q = `UPDATE reservations
	           SET state = ?, confirmation_code = ?, check_in_token = ?,
	               payment_method = ?, payment_ref = ?, updated_at = UTC_TIMESTAMP()
	           WHERE reservation_id = ? AND state = ?`
	res, err := r.db.ExecContext(ctx, q,
		model.StateConfirmed, code, token, method, paymentRef,
		reservationID, model.StatePendingPayment,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, reservationID); err != nil {
			return err
		}
		return ErrAlreadyFinalized
	}
	return nil
}

// MarkCancelled transitions a seat-holding reservation to CANCELLED. The
// boolean result reports whether this call performed the transition: true
// means the caller now owes a seat release, false means the reservation was
// already cancelled (release happened earlier) and the call is a no-op.
func (r *ReservationRepo) MarkCancelled(ctx context.Context, reservationID string) (bool, error) {
	const q = `UPDATE reservations
	           SET state = ?, updated_at = UTC_TIMESTAMP()
	           WHERE reservation_id = ? AND state IN (?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		model.StateCancelled, reservationID, model.StatePendingPayment, model.StateConfirmed,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, reservationID); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// ListByUser returns the user's reservations, newest first. When no
// reservations exist an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations
	           WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		var method, ref, code, token sql.NullString
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.SlotID, &res.DestinationID, &res.Pax,
			&res.UnitPriceCents, &res.TotalPriceCents, &res.State, &method, &ref,
			&code, &token, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if method.Valid {
			res.PaymentMethod = &method.String
		}
		if ref.Valid {
			res.PaymentRef = &ref.String
		}
		if code.Valid {
			res.ConfirmationCode = &code.String
		}
		if token.Valid {
			res.CheckInToken = &token.String
		}
		items = append(items, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
