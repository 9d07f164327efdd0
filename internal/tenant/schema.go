package tenant

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront-service/internal/model"
	"storefront-service/prometheus"
)

// Kind identifies one entity family in a tenant's database.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindProduct  Kind = "product"
	KindOrder    Kind = "order"
	KindCategory Kind = "category"
	KindOffer    Kind = "offer"
	KindPayment  Kind = "payment"
	KindSettings Kind = "settings"
)

// Kinds returns every entity kind a tenant database can hold.
func Kinds() []Kind {
	return []Kind{
		KindCustomer,
		KindProduct,
		KindOrder,
		KindCategory,
		KindOffer,
		KindPayment,
		KindSettings,
	}
}

// prototypes maps each kind to the model its schema is built from. Shape
// definitions are pure data, declared once, independent of any connection.
var prototypes = map[Kind]interface{}{
	KindCustomer: &model.Customer{},
	KindProduct:  &model.Product{},
	KindOrder:    &model.Order{},
	KindCategory: &model.Category{},
	KindOffer:    &model.Offer{},
	KindPayment:  &model.Payment{},
	KindSettings: &model.Settings{},
}

// Binder registers one entity's schema on a connection. Binding the same
// kind twice on one connection is not safe at the driver level; the
// connection serializes and deduplicates calls so a Binder only ever sees
// each (connection, kind) pair once, races excepted. A Binder that detects
// an existing registration returns ErrAlreadyBound and the caller recovers.
type Binder interface {
	Bind(ctx context.Context, db *gorm.DB, kind Kind, prototype interface{}) error
}

// AutoMigrateBinder binds an entity by running its gorm migration on the
// tenant database. This is the production binder.
type AutoMigrateBinder struct{}

// Bind implements Binder.
func (AutoMigrateBinder) Bind(ctx context.Context, db *gorm.DB, kind Kind, prototype interface{}) error {
	return db.WithContext(ctx).AutoMigrate(prototype)
}

// Accessor is a bound entity handle: queries issued through it run against
// exactly one tenant's database.
type Accessor struct {
	kind Kind
	conn *Conn
}

// Kind returns the entity kind this accessor is bound to.
func (a *Accessor) Kind() Kind {
	return a.kind
}

// DB returns a request-scoped gorm session on the tenant's database.
func (a *Accessor) DB(ctx context.Context) *gorm.DB {
	a.conn.touch()
	return a.conn.db.WithContext(ctx)
}

// Model returns a session pre-scoped to the accessor's entity table.
func (a *Accessor) Model(ctx context.Context) *gorm.DB {
	return a.DB(ctx).Model(prototypes[a.kind])
}

// Entity returns the accessor for kind on this connection, binding the
// schema on first use. Binding happens at most once per (connection, kind):
// repeated calls return the cached accessor without touching the driver.
func (c *Conn) Entity(ctx context.Context, kind Kind) (*Accessor, error) {
	proto, ok := prototypes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity kind %q", ErrEntityBindFailed, kind)
	}

	c.bindMu.Lock()
	defer c.bindMu.Unlock()

	if a, ok := c.bound[kind]; ok {
		return a, nil
	}

	if err := c.binder.Bind(ctx, c.db, kind, proto); err != nil {
		// A racing registration outside our guard is not a failure: the
		// schema is there, adopt it.
		if !errors.Is(err, ErrAlreadyBound) {
			return nil, fmt.Errorf("%w: %s: %v", ErrEntityBindFailed, kind, err)
		}
	}

	a := &Accessor{kind: kind, conn: c}
	c.bound[kind] = a
	prometheus.RecordEntityBind(string(kind))
	return a, nil
}
