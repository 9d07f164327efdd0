package tenant

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"storefront-service/pkg/config"
	"storefront-service/pkg/database"
	"storefront-service/prometheus"
)

// Opener opens the database belonging to one tenant. The production opener
// dials PostgreSQL; tests substitute fakes.
type Opener interface {
	Open(ctx context.Context, tenantID string) (*gorm.DB, error)
}

// PostgresOpener opens one logical database per tenant, named from the
// tenant ID, using the shared tenant-cluster settings.
type PostgresOpener struct {
	cfg config.TenantDBConfig
}

// NewPostgresOpener creates the production opener.
func NewPostgresOpener(cfg config.TenantDBConfig) *PostgresOpener {
	return &PostgresOpener{cfg: cfg}
}

// Open implements Opener.
func (o *PostgresOpener) Open(ctx context.Context, tenantID string) (*gorm.DB, error) {
	return database.Open(ctx, o.cfg.DSNFor(tenantID), database.PoolConfig{
		MaxIdleConns:    o.cfg.MaxIdleConns,
		MaxOpenConns:    o.cfg.MaxOpenConns,
		ConnMaxLifetime: o.cfg.ConnMaxLifetime,
		ConnectTimeout:  o.cfg.ConnectTimeout,
		LogLevel:        o.cfg.LogLevel,
	})
}

// Conn is a live handle to one tenant's database, together with the entity
// accessors bound to it. At most one Conn exists per tenant ID within the
// registry at any time.
type Conn struct {
	tenantID  string
	db        *gorm.DB
	binder    Binder
	createdAt time.Time
	lastUsed  atomic.Int64
	closed    atomic.Bool

	bindMu sync.Mutex
	bound  map[Kind]*Accessor
}

func newConn(tenantID string, db *gorm.DB, binder Binder) *Conn {
	c := &Conn{
		tenantID:  tenantID,
		db:        db,
		binder:    binder,
		createdAt: time.Now(),
		bound:     make(map[Kind]*Accessor),
	}
	c.touch()
	return c
}

// TenantID returns the tenant this connection belongs to.
func (c *Conn) TenantID() string {
	return c.tenantID
}

// DB returns a request-scoped gorm session on the tenant's database.
func (c *Conn) DB(ctx context.Context) *gorm.DB {
	c.touch()
	return c.db.WithContext(ctx)
}

func (c *Conn) touch() {
	c.lastUsed.Store(time.Now().UnixNano())
}

// LastUsed returns the time of the most recent acquisition or query.
func (c *Conn) LastUsed() time.Time {
	return time.Unix(0, c.lastUsed.Load())
}

func (c *Conn) close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RegistryOptions configures a Registry. Opener is required in production;
// zero eviction settings disable the janitor.
type RegistryOptions struct {
	Opener        Opener
	Binder        Binder
	MaxConns      int
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Logger        *zap.Logger
}

// Registry lazily opens and memoizes one database connection per tenant.
// Creation is single-flight per tenant ID: concurrent first requests for an
// unseen tenant share one open, and a failed open is never cached.
type Registry struct {
	opener Opener
	binder Binder
	log    *zap.Logger

	maxConns int
	idleTTL  time.Duration

	mu    sync.RWMutex
	conns map[string]*Conn
	group singleflight.Group

	stopOnce sync.Once
	stop     chan struct{}
	closed   atomic.Bool
}

// NewRegistry creates a connection registry and starts its idle-eviction
// janitor when configured.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Binder == nil {
		opts.Binder = AutoMigrateBinder{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Registry{
		opener:   opts.Opener,
		binder:   opts.Binder,
		log:      opts.Logger,
		maxConns: opts.MaxConns,
		idleTTL:  opts.IdleTTL,
		conns:    make(map[string]*Conn),
		stop:     make(chan struct{}),
	}

	if opts.SweepInterval > 0 && opts.IdleTTL > 0 {
		go r.janitor(opts.SweepInterval)
	}

	return r
}

// Conn returns the live connection for tenantID, opening it on first use.
// All callers for the same tenant receive the same handle.
func (r *Registry) Conn(ctx context.Context, tenantID string) (*Conn, error) {
	if tenantID == "" {
		return nil, ErrTenantIDMissing
	}
	if r.closed.Load() {
		return nil, ErrRegistryClosed
	}

	r.mu.RLock()
	c, ok := r.conns[tenantID]
	r.mu.RUnlock()
	if ok && !c.closed.Load() {
		c.touch()
		return c, nil
	}

	v, err, _ := r.group.Do(tenantID, func() (interface{}, error) {
		// A concurrent flight may have finished between the lookup above
		// and joining this one.
		r.mu.RLock()
		c, ok := r.conns[tenantID]
		r.mu.RUnlock()
		if ok && !c.closed.Load() {
			return c, nil
		}

		start := time.Now()
		db, err := r.opener.Open(ctx, tenantID)
		if err != nil {
			prometheus.ConnectionOpenErrorCounter.Inc()
			r.log.Warn("tenant connection open failed",
				zap.String("tenant_id", tenantID),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %s: %v", ErrConnectionFailed, tenantID, err)
		}
		prometheus.ConnectionOpenCounter.Inc()
		prometheus.ConnectionOpenDuration.Observe(time.Since(start).Seconds())

		conn := newConn(tenantID, db, r.binder)

		r.mu.Lock()
		r.conns[tenantID] = conn
		prometheus.ActiveConnectionsGauge.Set(float64(len(r.conns)))
		evict := r.overCapacityLocked(conn)
		r.mu.Unlock()

		for _, old := range evict {
			r.closeEvicted(old, "capacity")
		}

		r.log.Info("tenant connection opened",
			zap.String("tenant_id", tenantID),
			zap.Duration("took", time.Since(start)))
		return conn, nil
	})
	if err != nil {
		return nil, err
	}

	conn := v.(*Conn)
	conn.touch()
	return conn, nil
}

// overCapacityLocked picks the oldest-idle connections beyond the cap.
// keep is never selected. Caller holds r.mu.
func (r *Registry) overCapacityLocked(keep *Conn) []*Conn {
	if r.maxConns <= 0 || len(r.conns) <= r.maxConns {
		return nil
	}

	var victims []*Conn
	for len(r.conns) > r.maxConns {
		var oldest *Conn
		for _, c := range r.conns {
			if c == keep {
				continue
			}
			if oldest == nil || c.lastUsed.Load() < oldest.lastUsed.Load() {
				oldest = c
			}
		}
		if oldest == nil {
			break
		}
		delete(r.conns, oldest.tenantID)
		victims = append(victims, oldest)
	}
	prometheus.ActiveConnectionsGauge.Set(float64(len(r.conns)))
	return victims
}

func (r *Registry) closeEvicted(c *Conn, reason string) {
	prometheus.RecordEviction(reason)
	if err := c.close(); err != nil {
		r.log.Warn("failed to close evicted tenant connection",
			zap.String("tenant_id", c.tenantID),
			zap.Error(err))
		return
	}
	r.log.Info("tenant connection evicted",
		zap.String("tenant_id", c.tenantID),
		zap.String("reason", reason))
}

func (r *Registry) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(time.Now())
		case <-r.stop:
			return
		}
	}
}

// sweep evicts connections idle longer than the configured TTL.
func (r *Registry) sweep(now time.Time) {
	cutoff := now.Add(-r.idleTTL).UnixNano()

	r.mu.Lock()
	var victims []*Conn
	for id, c := range r.conns {
		if c.lastUsed.Load() < cutoff {
			delete(r.conns, id)
			victims = append(victims, c)
		}
	}
	prometheus.ActiveConnectionsGauge.Set(float64(len(r.conns)))
	r.mu.Unlock()

	for _, c := range victims {
		r.closeEvicted(c, "idle")
	}
}

// Len returns the number of live connections held by the registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Close stops the janitor and closes every held connection.
func (r *Registry) Close() error {
	r.closed.Store(true)
	r.stopOnce.Do(func() { close(r.stop) })

	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*Conn)
	prometheus.ActiveConnectionsGauge.Set(0)
	r.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
