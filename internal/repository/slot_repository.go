package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
)

// SlotRepo owns per-slot capacity and occupancy. Reserve and Release are
// the only operations that mutate occupancy, and both are single guarded
// UPDATE statements so the check-then-increment is atomic with respect to
// every other writer on the same row. All timestamps are UTC.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// Ensure creates the slot for the given key if it does not exist yet and
// returns the current row either way. The INSERT relies on the primary key
// on slot_id, so two concurrent first reservations cannot race-create two
// rows; the loser of the insert simply reads the winner's row.
func (r *SlotRepo) Ensure(ctx context.Context, key model.SlotKey, capacity int) (*model.TourSlot, error) {
	slotID := key.String()
	const ins = `INSERT INTO tour_slots (slot_id, destination_id, tour_date, capacity, occupied)
	             VALUES (?, ?, ?, ?, 0)
	             ON DUPLICATE KEY UPDATE slot_id = slot_id`
	if _, err := r.db.ExecContext(ctx, ins, slotID, key.DestinationID, key.Date.UTC().Format(model.SlotDateLayout), capacity); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, slotID)
}

// GetByID loads a slot row. Returns ErrSlotNotFound when absent.
func (r *SlotRepo) GetByID(ctx context.Context, slotID string) (*model.TourSlot, error) {
	const q = `SELECT slot_id, destination_id, tour_date, capacity, occupied, created_at, updated_at
	           FROM tour_slots WHERE slot_id = ?`
	var s model.TourSlot
	err := r.db.QueryRowContext(ctx, q, slotID).Scan(
		&s.SlotID, &s.DestinationID, &s.Date, &s.Capacity, &s.Occupied, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Reserve atomically takes pax seats on the slot. The capacity guard lives
// in the WHERE clause, so when two callers race for the last seat exactly
// one UPDATE matches; the other observes zero affected rows and gets
// ErrInsufficientCapacity without any mutation.
func (r *SlotRepo) Reserve(ctx context.Context, slotID string, pax int) error {
	const q = `UPDATE tour_slots
	           SET occupied = occupied + ?, updated_at = UTC_TIMESTAMP()
	           WHERE slot_id = ? AND occupied + ? <= capacity`
	res, err := r.db.ExecContext(ctx, q, pax, slotID, pax)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing slot from a full one.
		if _, err := r.GetByID(ctx, slotID); err != nil {
			return err
		}
		return ErrInsufficientCapacity
	}
	return nil
}

// Release returns pax seats to the slot, floored at zero occupancy so a
// double release cannot drive the counter negative.
func (r *SlotRepo) Release(ctx context.Context, slotID string, pax int) error {
	const q = `UPDATE tour_slots
	           SET occupied = GREATEST(occupied - ?, 0), updated_at = UTC_TIMESTAMP()
	           WHERE slot_id = ?`
	_, err := r.db.ExecContext(ctx, q, pax, slotID)
	return err
}

// Remaining reports capacity minus occupancy straight from the row, never
// from a cache. Returns ErrSlotNotFound when the slot has not been created.
func (r *SlotRepo) Remaining(ctx context.Context, slotID string) (int, error) {
	const q = `SELECT capacity - occupied FROM tour_slots WHERE slot_id = ?`
	var remaining int
	err := r.db.QueryRowContext(ctx, q, slotID).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSlotNotFound
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}
