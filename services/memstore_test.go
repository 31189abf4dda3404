package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bidding-service/models"
	"bidding-service/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore is an in-memory repository.Store. Transactions work on a copy of
// the data that is swapped in only when fn succeeds, and they are
// serialized, which stands in for row locks.
type memStore struct {
	mu       *sync.Mutex
	data     *memData
	inTx     bool
	failures map[string]error
}

type memData struct {
	orders   map[uuid.UUID]models.Order
	sessions map[uuid.UUID]models.BiddingSession
	bids     map[uuid.UUID]models.Bid
	owners   map[uuid.UUID]models.TruckOwner
	trucks   map[uuid.UUID]models.Truck
	seq      int64
}

var memEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newMemStore() *memStore {
	return &memStore{
		mu: &sync.Mutex{},
		data: &memData{
			orders:   map[uuid.UUID]models.Order{},
			sessions: map[uuid.UUID]models.BiddingSession{},
			bids:     map[uuid.UUID]models.Bid{},
			owners:   map[uuid.UUID]models.TruckOwner{},
			trucks:   map[uuid.UUID]models.Truck{},
		},
		failures: map[string]error{},
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		orders:   make(map[uuid.UUID]models.Order, len(d.orders)),
		sessions: make(map[uuid.UUID]models.BiddingSession, len(d.sessions)),
		bids:     make(map[uuid.UUID]models.Bid, len(d.bids)),
		owners:   make(map[uuid.UUID]models.TruckOwner, len(d.owners)),
		trucks:   make(map[uuid.UUID]models.Truck, len(d.trucks)),
		seq:      d.seq,
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.bids {
		c.bids[k] = v
	}
	for k, v := range d.owners {
		c.owners[k] = v
	}
	for k, v := range d.trucks {
		c.trucks[k] = v
	}
	return c
}

func (d *memData) tick() time.Time {
	d.seq++
	return memEpoch.Add(time.Duration(d.seq) * time.Millisecond)
}

// failOn makes the named operation return err, e.g. "bids.update".
func (s *memStore) failOn(op string, err error) { s.failures[op] = err }

func (s *memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) fail(op string) error { return s.failures[op] }

func (s *memStore) Orders() repository.OrderRepository     { return memOrders{s} }
func (s *memStore) Sessions() repository.SessionRepository { return memSessions{s} }
func (s *memStore) Bids() repository.BidRepository         { return memBids{s} }
func (s *memStore) Partners() repository.PartnerRepository { return memPartners{s} }

func (s *memStore) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memStore{mu: s.mu, data: s.data.clone(), inTx: true, failures: s.failures}
	if err := fn(tx); err != nil {
		return err
	}
	*s.data = *tx.data
	return nil
}

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, o *models.Order) error {
	defer r.s.lock()()
	if err := r.s.fail("orders.create"); err != nil {
		return err
	}
	for _, existing := range r.s.data.orders {
		if existing.OrderNo == o.OrderNo {
			return gorm.ErrDuplicatedKey
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = r.s.data.tick()
	o.UpdatedAt = o.CreatedAt
	r.s.data.orders[o.ID] = *o
	return nil
}

func (r memOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r memOrders) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.FindByID(ctx, id)
}

func (r memOrders) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Order, error) {
	defer r.s.lock()()
	var out []models.Order
	for _, id := range ids {
		if o, ok := r.s.data.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r memOrders) FindByStatus(_ context.Context, status string) ([]models.Order, error) {
	defer r.s.lock()()
	var out []models.Order
	for _, o := range r.s.data.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memOrders) FindHistory(_ context.Context) ([]models.Order, error) {
	defer r.s.lock()()
	var out []models.Order
	for _, o := range r.s.data.orders {
		if o.Status != models.OrderStatusPending {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r memOrders) FindAll(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	unlock := r.s.lock()
	var all []models.Order
	for _, o := range r.s.data.orders {
		if filter.Status == "" || o.Status == filter.Status {
			all = append(all, o)
		}
	}
	unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r memOrders) LastOrderNo(_ context.Context, prefix string) (string, error) {
	defer r.s.lock()()
	last := ""
	for _, o := range r.s.data.orders {
		if !strings.HasPrefix(o.OrderNo, prefix+"-") {
			continue
		}
		if len(o.OrderNo) > len(last) || (len(o.OrderNo) == len(last) && o.OrderNo > last) {
			last = o.OrderNo
		}
	}
	return last, nil
}

func (r memOrders) Update(_ context.Context, o *models.Order) error {
	defer r.s.lock()()
	if err := r.s.fail("orders.update"); err != nil {
		return err
	}
	o.UpdatedAt = r.s.data.tick()
	r.s.data.orders[o.ID] = *o
	return nil
}

type memSessions struct{ s *memStore }

func (r memSessions) CreateIfAbsent(_ context.Context, sess *models.BiddingSession) (bool, error) {
	defer r.s.lock()()
	if err := r.s.fail("sessions.create"); err != nil {
		return false, err
	}
	for _, existing := range r.s.data.sessions {
		if existing.OrderID == sess.OrderID {
			return false, nil
		}
	}
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	sess.CreatedAt = r.s.data.tick()
	sess.UpdatedAt = sess.CreatedAt
	r.s.data.sessions[sess.ID] = *sess
	return true, nil
}

func (r memSessions) FindByID(_ context.Context, id uuid.UUID) (*models.BiddingSession, error) {
	defer r.s.lock()()
	sess, ok := r.s.data.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sess, nil
}

func (r memSessions) FindByOrderID(_ context.Context, orderID uuid.UUID) (*models.BiddingSession, error) {
	defer r.s.lock()()
	for _, sess := range r.s.data.sessions {
		if sess.OrderID == orderID {
			return &sess, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memSessions) FindByOrderIDs(_ context.Context, orderIDs []uuid.UUID) ([]models.BiddingSession, error) {
	defer r.s.lock()()
	wanted := map[uuid.UUID]bool{}
	for _, id := range orderIDs {
		wanted[id] = true
	}
	var out []models.BiddingSession
	for _, sess := range r.s.data.sessions {
		if wanted[sess.OrderID] {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (r memSessions) FindAll(_ context.Context) ([]models.BiddingSession, error) {
	defer r.s.lock()()
	var out []models.BiddingSession
	for _, sess := range r.s.data.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.After(out[j].EndTime) })
	return out, nil
}

func (r memSessions) Update(_ context.Context, sess *models.BiddingSession) error {
	defer r.s.lock()()
	if err := r.s.fail("sessions.update"); err != nil {
		return err
	}
	sess.UpdatedAt = r.s.data.tick()
	r.s.data.sessions[sess.ID] = *sess
	return nil
}

type memBids struct{ s *memStore }

func (r memBids) Create(_ context.Context, b *models.Bid) error {
	defer r.s.lock()()
	if err := r.s.fail("bids.create"); err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = r.s.data.tick()
	r.s.data.bids[b.ID] = *b
	return nil
}

func (r memBids) FindByID(_ context.Context, id uuid.UUID) (*models.Bid, error) {
	defer r.s.lock()()
	b, ok := r.s.data.bids[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r memBids) Update(_ context.Context, b *models.Bid) error {
	defer r.s.lock()()
	if err := r.s.fail("bids.update"); err != nil {
		return err
	}
	r.s.data.bids[b.ID] = *b
	return nil
}

func (r memBids) List(_ context.Context, filter models.BidFilter) ([]models.BidView, error) {
	defer r.s.lock()()
	var out []models.BidView
	for _, b := range r.s.data.bids {
		sess := r.s.data.sessions[b.SessionID]
		if filter.SessionID != uuid.Nil && b.SessionID != filter.SessionID {
			continue
		}
		if filter.OrderID != uuid.Nil && sess.OrderID != filter.OrderID {
			continue
		}
		order := r.s.data.orders[sess.OrderID]
		owner := r.s.data.owners[b.OwnerID]
		out = append(out, models.BidView{
			ID:           b.ID,
			SessionID:    b.SessionID,
			OrderID:      sess.OrderID,
			OrderNo:      order.OrderNo,
			FromLocation: order.FromLocation,
			ToLocation:   order.ToLocation,
			OwnerID:      b.OwnerID,
			OwnerName:    owner.Name,
			OwnerPhone:   owner.Phone,
			Amount:       b.Amount,
			Status:       b.Status,
			Round:        b.Round,
			History:      b.Round < sess.Round,
			CreatedAt:    b.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount < out[j].Amount
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r memBids) lowest(sessionID uuid.UUID, round int) (*models.Bid, int64) {
	var best *models.Bid
	var count int64
	for _, b := range r.s.data.bids {
		if b.SessionID != sessionID || b.Status != models.BidStatusOpen {
			continue
		}
		if round > 0 && b.Round != round {
			continue
		}
		count++
		b := b
		if best == nil || b.Amount < best.Amount ||
			(b.Amount == best.Amount && b.CreatedAt.Before(best.CreatedAt)) {
			best = &b
		}
	}
	return best, count
}

func (r memBids) LowestOpen(_ context.Context, sessionID uuid.UUID, round int) (*models.Bid, error) {
	defer r.s.lock()()
	best, _ := r.lowest(sessionID, round)
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (r memBids) LowestBySessions(_ context.Context, sessionIDs []uuid.UUID, currentRoundOnly bool) ([]models.LowestBidRow, error) {
	defer r.s.lock()()
	var out []models.LowestBidRow
	for _, id := range sessionIDs {
		round := 0
		if currentRoundOnly {
			round = r.s.data.sessions[id].Round
		}
		best, count := r.lowest(id, round)
		if best == nil {
			continue
		}
		out = append(out, models.LowestBidRow{SessionID: id, BidID: best.ID, Amount: best.Amount, OpenBidCount: count})
	}
	return out, nil
}

type memPartners struct{ s *memStore }

func (r memPartners) CreateOwner(_ context.Context, o *models.TruckOwner) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.owners {
		if existing.Phone == o.Phone {
			return gorm.ErrDuplicatedKey
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = r.s.data.tick()
	stored := *o
	stored.Trucks = nil
	r.s.data.owners[o.ID] = stored
	return nil
}

func (r memPartners) FindOwnerByID(_ context.Context, id uuid.UUID) (*models.TruckOwner, error) {
	defer r.s.lock()()
	o, ok := r.s.data.owners[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r memPartners) FindOwnerByPhone(_ context.Context, phone string) (*models.TruckOwner, error) {
	defer r.s.lock()()
	for _, o := range r.s.data.owners {
		if o.Phone == phone {
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memPartners) FindOwnersByIDs(_ context.Context, ids []uuid.UUID) ([]models.TruckOwner, error) {
	defer r.s.lock()()
	var out []models.TruckOwner
	for _, id := range ids {
		if o, ok := r.s.data.owners[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r memPartners) UpdateOwner(_ context.Context, o *models.TruckOwner) error {
	defer r.s.lock()()
	stored := *o
	stored.Trucks = nil
	r.s.data.owners[o.ID] = stored
	return nil
}

func (r memPartners) FindApprovedOwners(_ context.Context) ([]models.TruckOwner, error) {
	defer r.s.lock()()
	var out []models.TruckOwner
	for _, o := range r.s.data.owners {
		if o.Status != models.VerificationApproved {
			continue
		}
		for _, t := range r.s.data.trucks {
			if t.OwnerID == o.ID && t.Status == models.VerificationApproved {
				o.Trucks = append(o.Trucks, t)
			}
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memPartners) CreateTruck(_ context.Context, t *models.Truck) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.trucks {
		if existing.Number == t.Number {
			return gorm.ErrDuplicatedKey
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = r.s.data.tick()
	r.s.data.trucks[t.ID] = *t
	return nil
}

func (r memPartners) FindTruckByID(_ context.Context, id uuid.UUID) (*models.Truck, error) {
	defer r.s.lock()()
	t, ok := r.s.data.trucks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r memPartners) FindTrucksByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Truck, error) {
	defer r.s.lock()()
	var out []models.Truck
	for _, t := range r.s.data.trucks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memPartners) FindTrucksByStatus(_ context.Context, status string) ([]models.Truck, error) {
	defer r.s.lock()()
	var out []models.Truck
	for _, t := range r.s.data.trucks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memPartners) UpdateTruck(_ context.Context, t *models.Truck) error {
	defer r.s.lock()()
	r.s.data.trucks[t.ID] = *t
	return nil
}
