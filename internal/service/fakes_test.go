package service

import (
	"context"
	"sync"
	"time"

	"github.com/Ghost-ofc/peru-reservas/internal/model"
	"github.com/Ghost-ofc/peru-reservas/internal/payment"
	"github.com/Ghost-ofc/peru-reservas/internal/queue"
	"github.com/Ghost-ofc/peru-reservas/internal/repository"
)

// In-memory stores mirroring the repository contracts, guarded by mutexes
// so the concurrency tests exercise real interleavings.

type fakeSlotStore struct {
	mu    sync.Mutex
	slots map[string]*model.TourSlot
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{slots: make(map[string]*model.TourSlot)}
}

func (f *fakeSlotStore) Ensure(_ context.Context, key model.SlotKey, capacity int) (*model.TourSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := key.String()
	if s, ok := f.slots[id]; ok {
		cp := *s
		return &cp, nil
	}
	s := &model.TourSlot{
		SlotID:        id,
		DestinationID: key.DestinationID,
		Date:          key.Date,
		Capacity:      capacity,
	}
	f.slots[id] = s
	cp := *s
	return &cp, nil
}

func (f *fakeSlotStore) Reserve(_ context.Context, slotID string, pax int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return repository.ErrSlotNotFound
	}
	if s.Occupied+pax > s.Capacity {
		return repository.ErrInsufficientCapacity
	}
	s.Occupied += pax
	return nil
}

func (f *fakeSlotStore) Release(_ context.Context, slotID string, pax int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return repository.ErrSlotNotFound
	}
	s.Occupied -= pax
	if s.Occupied < 0 {
		s.Occupied = 0
	}
	return nil
}

func (f *fakeSlotStore) Remaining(_ context.Context, slotID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return 0, repository.ErrSlotNotFound
	}
	return s.Capacity - s.Occupied, nil
}

type fakeReservationStore struct {
	mu   sync.Mutex
	byID map[string]*model.Reservation
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{byID: make(map[string]*model.Reservation)}
}

func (f *fakeReservationStore) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *res
	f.byID[res.ID] = &cp
	return nil
}

func (f *fakeReservationStore) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservationStore) GetByConfirmationCode(_ context.Context, code string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if r.ConfirmationCode != nil && *r.ConfirmationCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrReservationNotFound
}

func (f *fakeReservationStore) MarkConfirmed(_ context.Context, id, code, token, method, paymentRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if r.State != model.StatePendingPayment {
		return repository.ErrAlreadyFinalized
	}
	r.State = model.StateConfirmed
	r.ConfirmationCode = &code
	r.CheckInToken = &token
	r.PaymentMethod = &method
	r.PaymentRef = &paymentRef
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeReservationStore) MarkCancelled(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return false, repository.ErrReservationNotFound
	}
	if r.State == model.StateCancelled {
		return false, nil
	}
	r.State = model.StateCancelled
	r.UpdatedAt = time.Now().UTC()
	return true, nil
}

type fakeCheckInStore struct {
	mu   sync.Mutex
	recs map[string]*model.CheckInRecord
}

func newFakeCheckInStore() *fakeCheckInStore {
	return &fakeCheckInStore{recs: make(map[string]*model.CheckInRecord)}
}

func (f *fakeCheckInStore) Insert(_ context.Context, rec *model.CheckInRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recs[rec.ReservationID]; ok {
		return repository.ErrAlreadyCheckedIn
	}
	cp := *rec
	f.recs[rec.ReservationID] = &cp
	return nil
}

func (f *fakeCheckInStore) Exists(_ context.Context, reservationID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.recs[reservationID]
	return ok, nil
}

type fakeDestinationStore struct {
	dests map[string]*model.Destination
}

func newFakeDestinationStore(dests ...model.Destination) *fakeDestinationStore {
	m := make(map[string]*model.Destination, len(dests))
	for i := range dests {
		m[dests[i].ID] = &dests[i]
	}
	return &fakeDestinationStore{dests: m}
}

func (f *fakeDestinationStore) GetByID(_ context.Context, id string) (*model.Destination, error) {
	d, ok := f.dests[id]
	if !ok {
		return nil, repository.ErrDestinationNotFound
	}
	cp := *d
	return &cp, nil
}

// recordingPublisher collects published events for assertions.
type recordingPublisher struct {
	mu        sync.Mutex
	confirmed []queue.ReservationConfirmedEvent
	checkins  []queue.CheckInRecordedEvent
}

func (p *recordingPublisher) ReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, ev)
	return nil
}

func (p *recordingPublisher) CheckInRecorded(_ context.Context, ev queue.CheckInRecordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkins = append(p.checkins, ev)
	return nil
}

func (p *recordingPublisher) confirmedEvents() []queue.ReservationConfirmedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.ReservationConfirmedEvent, len(p.confirmed))
	copy(out, p.confirmed)
	return out
}

func (p *recordingPublisher) checkInEvents() []queue.CheckInRecordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.CheckInRecordedEvent, len(p.checkins))
	copy(out, p.checkins)
	return out
}

// env bundles a fully wired booking + check-in service pair over the
// in-memory stores, sharing one KeyLock like production wiring does.
type env struct {
	slots        *fakeSlotStore
	reservations *fakeReservationStore
	checkins     *fakeCheckInStore
	destinations *fakeDestinationStore
	publisher    *recordingPublisher
	booking      *BookingService
	checkin      *CheckInService
}

func newEnv(declineMethods ...string) *env {
	e := &env{
		slots:        newFakeSlotStore(),
		reservations: newFakeReservationStore(),
		checkins:     newFakeCheckInStore(),
		destinations: newFakeDestinationStore(
			model.Destination{ID: "dest_001", Name: "Machu Picchu Full Day", Region: "Cusco", UnitPriceCents: 35000, SlotCapacity: 15},
			model.Destination{ID: "dest_002", Name: "Laguna Humantay", Region: "Cusco", UnitPriceCents: 18000, SlotCapacity: 20},
		),
		publisher: &recordingPublisher{},
	}
	locks := NewKeyLock()
	gateway := newFakeGateway(declineMethods...)
	e.booking = NewBookingService(e.slots, e.reservations, e.checkins, e.destinations, gateway, e.publisher, locks)
	e.checkin = NewCheckInService(e.reservations, e.checkins, e.publisher, locks)
	return e
}

// fakeGateway approves everything except the listed methods, like the
// sandbox gateway, but with deterministic transaction ids.
type fakeGateway struct {
	decline map[string]bool
}

func newFakeGateway(declineMethods ...string) *fakeGateway {
	d := make(map[string]bool, len(declineMethods))
	for _, m := range declineMethods {
		d[m] = true
	}
	return &fakeGateway{decline: d}
}

func (g *fakeGateway) Charge(_ context.Context, req payment.ChargeRequest) (payment.ChargeResult, error) {
	if g.decline[req.Method] {
		return payment.ChargeResult{Approved: false}, nil
	}
	return payment.ChargeResult{Approved: true, TransactionID: "txn-" + req.BookingID}, nil
}
