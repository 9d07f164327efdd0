package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/model"
	"storefront-service/prometheus"
)

// DirectoryStore is the lookup surface of the global directory database.
type DirectoryStore interface {
	StoreByCode(ctx context.Context, code string) (*model.Store, error)
	OwnerByEmail(ctx context.Context, email string) (*model.Owner, error)
}

// GormDirectoryStore implements DirectoryStore over the global database.
type GormDirectoryStore struct {
	db *gorm.DB
}

// NewGormDirectoryStore wraps the global database handle.
func NewGormDirectoryStore(db *gorm.DB) *GormDirectoryStore {
	return &GormDirectoryStore{db: db}
}

// StoreByCode implements DirectoryStore.
func (s *GormDirectoryStore) StoreByCode(ctx context.Context, code string) (*model.Store, error) {
	var store model.Store
	result := s.db.WithContext(ctx).Where("code = ? AND active = ?", code, true).First(&store)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, result.Error
	}
	return &store, nil
}

// OwnerByEmail implements DirectoryStore.
func (s *GormDirectoryStore) OwnerByEmail(ctx context.Context, email string) (*model.Owner, error) {
	var owner model.Owner
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&owner)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, result.Error
	}
	return &owner, nil
}

// Directory resolves public store codes to tenant identities, with a
// TTL-bounded LRU in front of the global database. The TTL bounds how long
// a deactivated store keeps resolving.
type Directory struct {
	store DirectoryStore
	cache *expirable.LRU[string, *model.Store]
	log   *zap.Logger
}

// DirectoryOptions configures the directory cache.
type DirectoryOptions struct {
	Store     DirectoryStore
	CacheSize int
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

// NewDirectory creates a store directory.
func NewDirectory(opts DirectoryOptions) *Directory {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Directory{
		store: opts.Store,
		cache: expirable.NewLRU[string, *model.Store](opts.CacheSize, nil, opts.CacheTTL),
		log:   opts.Logger,
	}
}

// NormalizeCode canonicalizes a store code taken from request addressing.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve maps a store code to its directory record.
func (d *Directory) Resolve(ctx context.Context, code string) (*model.Store, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrStoreNotFound
	}

	if store, ok := d.cache.Get(code); ok {
		prometheus.DirectoryCacheHitCounter.Inc()
		return store, nil
	}
	prometheus.DirectoryCacheMissCounter.Inc()

	store, err := d.store.StoreByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}

	d.cache.Add(code, store)
	return store, nil
}

// OwnerByEmail looks up the directory record for an owner login.
func (d *Directory) OwnerByEmail(ctx context.Context, email string) (*model.Owner, error) {
	return d.store.OwnerByEmail(ctx, email)
}

// Forget drops a store code from the cache, for use after store updates.
func (d *Directory) Forget(code string) {
	d.cache.Remove(NormalizeCode(code))
}
