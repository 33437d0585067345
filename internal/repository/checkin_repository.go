package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// CheckInRepo stores boarding records. The table carries a UNIQUE key on
// reservation_id, which is what makes check-in exactly-once enforceable:
// when two guides scan the same token in the same instant, the storage
// layer admits one INSERT and rejects the other with a duplicate-entry
// error that surfaces here as ErrAlreadyCheckedIn.
type CheckInRepo struct {
	db *sql.DB
}

// NewCheckInRepo returns a new CheckInRepo bound to the given database.
func NewCheckInRepo(db *sql.DB) *CheckInRepo { return &CheckInRepo{db: db} }

// Insert writes the check-in record for a reservation. The generated ID is
// populated on the passed record. A second insert for the same reservation
// returns ErrAlreadyCheckedIn and leaves the first record untouched.
func (r *CheckInRepo) Insert(ctx context.Context, rec *model.CheckInRecord) error {
	const q = `INSERT INTO check_ins (reservation_id, guide_id, checked_in_at, status) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rec.ReservationID, rec.GuideID, rec.CheckedInAt.UTC(), rec.Status)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrAlreadyCheckedIn
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// Exists reports whether a check-in record exists for the reservation.
func (r *CheckInRepo) Exists(ctx context.Context, reservationID string) (bool, error) {
	const q = `SELECT 1 FROM check_ins WHERE reservation_id = ?`
	var one int
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
