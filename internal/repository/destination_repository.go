package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
)

// DestinationRepo reads the tour catalog. The booking engine needs it for
// two values at reservation time: the per-seat price and the capacity a
// lazily created slot starts with.
type DestinationRepo struct {
	db *sql.DB
}

// NewDestinationRepo returns a new DestinationRepo bound to the given database.
func NewDestinationRepo(db *sql.DB) *DestinationRepo { return &DestinationRepo{db: db} }

// GetByID loads a destination. Returns ErrDestinationNotFound when absent.
func (r *DestinationRepo) GetByID(ctx context.Context, destinationID string) (*model.Destination, error) {
	const q = `SELECT destination_id, name, region, unit_price_cents, slot_capacity, created_at
	           FROM destinations WHERE destination_id = ?`
	var d model.Destination
	err := r.db.QueryRowContext(ctx, q, destinationID).Scan(
		&d.ID, &d.Name, &d.Region, &d.UnitPriceCents, &d.SlotCapacity, &d.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDestinationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all destinations ordered by identifier.
func (r *DestinationRepo) List(ctx context.Context) ([]model.Destination, error) {
	const q = `SELECT destination_id, name, region, unit_price_cents, slot_capacity, created_at
	           FROM destinations ORDER BY destination_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Destination, 0)
	for rows.Next() {
		var d model.Destination
		if err := rows.Scan(&d.ID, &d.Name, &d.Region, &d.UnitPriceCents, &d.SlotCapacity, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
