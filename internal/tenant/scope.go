package tenant

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"storefront-service/internal/model"
)

// Scope is the tenant context of one request: the resolved identity, the
// live connection, and a per-request cache of entity accessors so route
// handlers never re-derive them.
type Scope struct {
	TenantID string
	StoreID  string
	Store    *model.Store // directory metadata, nil when resolved from a token claim

	conn *Conn

	mu  sync.Mutex
	acc map[Kind]*Accessor
}

// NewScope builds the request scope around a resolved connection.
func NewScope(tenantID, storeID string, store *model.Store, conn *Conn) *Scope {
	return &Scope{
		TenantID: tenantID,
		StoreID:  storeID,
		Store:    store,
		conn:     conn,
		acc:      make(map[Kind]*Accessor),
	}
}

// Conn exposes the underlying tenant connection.
func (s *Scope) Conn() *Conn {
	return s.conn
}

// Entity returns the accessor for kind, bound lazily and cached for the
// remainder of the request.
func (s *Scope) Entity(ctx context.Context, kind Kind) (*Accessor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.acc[kind]; ok {
		return a, nil
	}
	a, err := s.conn.Entity(ctx, kind)
	if err != nil {
		return nil, err
	}
	s.acc[kind] = a
	return a, nil
}

// session binds the kind and returns a query session on the tenant database.
func (s *Scope) session(ctx context.Context, kind Kind) (*gorm.DB, error) {
	a, err := s.Entity(ctx, kind)
	if err != nil {
		return nil, err
	}
	return a.DB(ctx), nil
}

// Customers returns a session with the Customer schema bound.
func (s *Scope) Customers(ctx context.Context) (*gorm.DB, error) {
	return s.session(ctx, KindCustomer)
}

// Products returns a session with the Product schema bound.
func (s *Scope) Products(ctx context.Context) (*gorm.DB, error) {
	return s.session(ctx, KindProduct)
}

// Orders returns a session with the Order schema bound.
func (s *Scope) Orders(ctx context.Context) (*gorm.DB, error) {
	return s.session(ctx, KindOrder)
}

// Categories returns a session with the Category schema bound.
func (s *Scope) Categories(ctx context.Context) (*gorm.DB, error) {
	return s.session(ctx, KindCategory)
}

// Offers returns a session with the Offer schema bound.
func (s *Scope) Offers(ctx context.Context) (*gorm.DB, error) {
	return s.session(ctx, KindOffer)
}

// Payments returns a session with the Payment schema bound.
func (s *Scope) Payments(ctx context.Context) (*gorm.DB, error) {
	return s.session(ctx, KindPayment)
}

// Settings returns a session with the Settings schema bound.
func (s *Scope) Settings(ctx context.Context) (*gorm.DB, error) {
	return s.session(ctx, KindSettings)
}
