package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"horseshipt/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryStore is a mutex-guarded backend used by tests and as a standalone
// dev database (DB_TYPE=memory). It enforces the same uniqueness rules as the
// Mongo indexes and Postgres constraints, so races behave identically.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]*models.AppUser
	shipments   map[string]*models.Shipment
	quotes      map[string]*models.Quote
	assignments map[string]*models.Assignment
	settings    map[string]*models.CarrierSettings // keyed by carrier id
	messages    map[string]*models.ShipmentMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*models.AppUser),
		shipments:   make(map[string]*models.Shipment),
		quotes:      make(map[string]*models.Quote),
		assignments: make(map[string]*models.Assignment),
		settings:    make(map[string]*models.CarrierSettings),
		messages:    make(map[string]*models.ShipmentMessage),
	}
}

func (m *MemoryStore) Shipments() ShipmentRepository     { return &memoryShipmentRepo{m} }
func (m *MemoryStore) Quotes() QuoteRepository           { return &memoryQuoteRepo{m} }
func (m *MemoryStore) Assignments() AssignmentRepository { return &memoryAssignmentRepo{m} }
func (m *MemoryStore) Users() UserRepository             { return &memoryUserRepo{m} }
func (m *MemoryStore) Settings() SettingsRepository      { return &memorySettingsRepo{m} }
func (m *MemoryStore) Messages() MessageRepository       { return &memoryMessageRepo{m} }

func copyShipment(s *models.Shipment) *models.Shipment {
	cp := *s
	if s.CarrierID != nil {
		v := *s.CarrierID
		cp.CarrierID = &v
	}
	cp.Horses = append([]models.Horse(nil), s.Horses...)
	cp.LocationHistory = append([]models.Location(nil), s.LocationHistory...)
	if s.CurrentLocation != nil {
		loc := *s.CurrentLocation
		cp.CurrentLocation = &loc
	}
	return &cp
}

func copyAssignment(a *models.Assignment) *models.Assignment {
	cp := *a
	cp.LocationHistory = append([]models.Location(nil), a.LocationHistory...)
	if a.CurrentLocation != nil {
		loc := *a.CurrentLocation
		cp.CurrentLocation = &loc
	}
	cp.Shipment = nil
	return &cp
}

// ---------------- shipments ----------------

type memoryShipmentRepo struct{ s *MemoryStore }

func (r *memoryShipmentRepo) Create(_ context.Context, sh *models.Shipment) error {
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = now
	}
	sh.UpdatedAt = now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.shipments[sh.ID] = copyShipment(sh)
	return nil
}

func (r *memoryShipmentRepo) GetByID(_ context.Context, id string) (*models.Shipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sh, ok := r.s.shipments[id]
	if !ok {
		return nil, nil
	}
	return copyShipment(sh), nil
}

func (r *memoryShipmentRepo) ListByCustomer(_ context.Context, customerID string) ([]*models.Shipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Shipment
	for _, sh := range r.s.shipments {
		if sh.CustomerID == customerID {
			out = append(out, copyShipment(sh))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryShipmentRepo) ListAvailable(_ context.Context, asOfDate string) ([]*models.Shipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Shipment
	for _, sh := range r.s.shipments {
		if sh.Status == models.ShipmentPending && sh.PickupDate >= asOfDate {
			out = append(out, copyShipment(sh))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PickupDate < out[j].PickupDate })
	return out, nil
}

func (r *memoryShipmentRepo) Update(_ context.Context, sh *models.Shipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.shipments[sh.ID]
	if !ok {
		return models.NewNotFoundError("shipment %s not found", sh.ID)
	}
	sh.UpdatedAt = time.Now().UTC()
	sh.CreatedAt = stored.CreatedAt
	r.s.shipments[sh.ID] = copyShipment(sh)
	return nil
}

func (r *memoryShipmentRepo) SetAssigned(_ context.Context, id, carrierID string) error {
	return r.mutate(id, func(sh *models.Shipment) {
		sh.Status = models.ShipmentAssigned
		sh.CarrierID = &carrierID
	})
}

func (r *memoryShipmentRepo) SetStatus(_ context.Context, id string, status models.ShipmentStatus) error {
	return r.mutate(id, func(sh *models.Shipment) { sh.Status = status })
}

func (r *memoryShipmentRepo) Release(_ context.Context, id string, status models.ShipmentStatus) error {
	return r.mutate(id, func(sh *models.Shipment) {
		sh.Status = status
		sh.CarrierID = nil
	})
}

func (r *memoryShipmentRepo) SetWaybill(_ context.Context, id, url string, createdAt time.Time) error {
	return r.mutate(id, func(sh *models.Shipment) {
		sh.WaybillURL = &url
		sh.WaybillCreatedAt = &createdAt
	})
}

func (r *memoryShipmentRepo) AppendLocation(_ context.Context, id string, loc models.Location) error {
	return r.mutate(id, func(sh *models.Shipment) {
		sh.CurrentLocation = &loc
		sh.LocationHistory = append(sh.LocationHistory, loc)
	})
}

func (r *memoryShipmentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shipments[id]; !ok {
		return models.NewNotFoundError("shipment %s not found", id)
	}
	delete(r.s.shipments, id)
	return nil
}

func (r *memoryShipmentRepo) mutate(id string, fn func(*models.Shipment)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[id]
	if !ok {
		return models.NewNotFoundError("shipment %s not found", id)
	}
	fn(sh)
	sh.UpdatedAt = time.Now().UTC()
	return nil
}

// ---------------- quotes ----------------

type memoryQuoteRepo struct{ s *MemoryStore }

func (r *memoryQuoteRepo) Create(_ context.Context, q *models.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.quotes {
		if existing.ShipmentID == q.ShipmentID && existing.CarrierID == q.CarrierID {
			return models.NewConflictError("carrier already sent a quote for shipment %s", q.ShipmentID)
		}
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	cp := *q
	cp.Carrier, cp.Shipment = nil, nil
	r.s.quotes[q.ID] = &cp
	return nil
}

func (r *memoryQuoteRepo) GetByID(_ context.Context, id string) (*models.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q, ok := r.s.quotes[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (r *memoryQuoteRepo) ListByShipment(_ context.Context, shipmentID string) ([]*models.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Quote
	for _, q := range r.s.quotes {
		if q.ShipmentID != shipmentID {
			continue
		}
		cp := *q
		if u, ok := r.s.users[q.CarrierID]; ok {
			cp.Carrier = u.Summary()
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryQuoteRepo) ListByCarrier(_ context.Context, carrierID string) ([]*models.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Quote
	for _, q := range r.s.quotes {
		if q.CarrierID != carrierID {
			continue
		}
		cp := *q
		if sh, ok := r.s.shipments[q.ShipmentID]; ok {
			cp.Shipment = copyShipment(sh)
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryQuoteRepo) SetStatus(_ context.Context, id string, status models.QuoteStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotes[id]
	if !ok {
		return models.NewNotFoundError("quote %s not found", id)
	}
	q.Status = status
	q.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryQuoteRepo) RejectSiblings(_ context.Context, shipmentID, acceptedID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	for _, q := range r.s.quotes {
		if q.ShipmentID == shipmentID && q.ID != acceptedID {
			q.Status = models.QuoteRejected
			q.UpdatedAt = now
		}
	}
	return nil
}

// ---------------- assignments ----------------

type memoryAssignmentRepo struct{ s *MemoryStore }

func (r *memoryAssignmentRepo) Create(_ context.Context, a *models.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.assignments {
		if existing.ShipmentID == a.ShipmentID {
			return models.NewConflictError("shipment %s is already accepted by another carrier", a.ShipmentID)
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	r.s.assignments[a.ID] = copyAssignment(a)
	return nil
}

func (r *memoryAssignmentRepo) GetByID(_ context.Context, id string) (*models.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, nil
	}
	return r.withShipment(a), nil
}

func (r *memoryAssignmentRepo) GetByShipment(_ context.Context, shipmentID string) (*models.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.assignments {
		if a.ShipmentID == shipmentID {
			return r.withShipment(a), nil
		}
	}
	return nil, nil
}

func (r *memoryAssignmentRepo) ListByCarrier(_ context.Context, carrierID string) ([]*models.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Assignment
	for _, a := range r.s.assignments {
		if a.CarrierID == carrierID {
			out = append(out, r.withShipment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// withShipment copies the assignment with its linked shipment populated.
// Callers must hold at least a read lock.
func (r *memoryAssignmentRepo) withShipment(a *models.Assignment) *models.Assignment {
	cp := copyAssignment(a)
	if sh, ok := r.s.shipments[a.ShipmentID]; ok {
		cp.Shipment = copyShipment(sh)
	}
	return cp
}

func (r *memoryAssignmentRepo) SetStatus(_ context.Context, id string, status models.AssignmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return models.NewNotFoundError("assignment %s not found", id)
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryAssignmentRepo) AppendLocation(_ context.Context, id string, loc models.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return models.NewNotFoundError("assignment %s not found", id)
	}
	a.CurrentLocation = &loc
	a.LocationHistory = append(a.LocationHistory, loc)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// ---------------- users ----------------

type memoryUserRepo struct{ s *MemoryStore }

func (r *memoryUserRepo) CreateUser(_ context.Context, user *models.AppUser) error {
	if user.Password == "" {
		return models.NewValidationError("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return models.NewConflictError("email %s is already registered", user.Email)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memoryUserRepo) GetUserByEmail(_ context.Context, email string) (*models.AppUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetUserByID(_ context.Context, id string) (*models.AppUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// ---------------- settings ----------------

type memorySettingsRepo struct{ s *MemoryStore }

func (r *memorySettingsRepo) GetByCarrier(_ context.Context, carrierID string) (*models.CarrierSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.settings[carrierID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *memorySettingsRepo) Save(_ context.Context, st *models.CarrierSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	st.UpdatedAt = now
	cp := *st
	r.s.settings[st.CarrierID] = &cp
	return nil
}

// ---------------- messages ----------------

type memoryMessageRepo struct{ s *MemoryStore }

func (r *memoryMessageRepo) Create(_ context.Context, m *models.ShipmentMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	cp := *m
	cp.Sender = nil
	r.s.messages[m.ID] = &cp
	return nil
}

func (r *memoryMessageRepo) ListByShipment(_ context.Context, shipmentID string) ([]*models.ShipmentMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.ShipmentMessage
	for _, m := range r.s.messages {
		if m.ShipmentID != shipmentID {
			continue
		}
		cp := *m
		if u, ok := r.s.users[m.SenderID]; ok {
			cp.Sender = u.Summary()
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
