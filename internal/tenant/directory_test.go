package tenant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/model"
)

// fakeDirectoryStore serves stores and owners from maps and counts lookups.
type fakeDirectoryStore struct {
	mu      sync.Mutex
	stores  map[string]*model.Store
	owners  map[string]*model.Owner
	lookups int
}

func newFakeDirectoryStore() *fakeDirectoryStore {
	return &fakeDirectoryStore{
		stores: make(map[string]*model.Store),
		owners: make(map[string]*model.Owner),
	}
}

func (s *fakeDirectoryStore) StoreByCode(ctx context.Context, code string) (*model.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	store, ok := s.stores[code]
	if !ok {
		return nil, ErrStoreNotFound
	}
	return store, nil
}

func (s *fakeDirectoryStore) OwnerByEmail(ctx context.Context, email string) (*model.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[email]
	if !ok {
		return nil, ErrOwnerNotFound
	}
	return owner, nil
}

func (s *fakeDirectoryStore) lookupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

func newTestDirectory(store DirectoryStore) *Directory {
	return NewDirectory(DirectoryOptions{
		Store:    store,
		CacheTTL: time.Minute,
	})
}

func TestDirectoryResolve(t *testing.T) {
	store := newFakeDirectoryStore()
	store.stores["AB12CD"] = &model.Store{Code: "AB12CD", TenantID: "tenant_a"}
	d := newTestDirectory(store)

	resolved, err := d.Resolve(context.Background(), "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "tenant_a", resolved.TenantID)
}

func TestDirectoryResolveCaches(t *testing.T) {
	store := newFakeDirectoryStore()
	store.stores["AB12CD"] = &model.Store{Code: "AB12CD", TenantID: "tenant_a"}
	d := newTestDirectory(store)

	for i := 0; i < 5; i++ {
		_, err := d.Resolve(context.Background(), "AB12CD")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.lookupCount())
}

func TestDirectoryResolveNormalizesCode(t *testing.T) {
	store := newFakeDirectoryStore()
	store.stores["AB12CD"] = &model.Store{Code: "AB12CD", TenantID: "tenant_a"}
	d := newTestDirectory(store)

	_, err := d.Resolve(context.Background(), "ab12cd")
	require.NoError(t, err)
	_, err = d.Resolve(context.Background(), " AB12CD ")
	require.NoError(t, err)

	// Every spelling hits the same cache entry.
	assert.Equal(t, 1, store.lookupCount())
}

func TestDirectoryResolveNotFound(t *testing.T) {
	d := newTestDirectory(newFakeDirectoryStore())

	_, err := d.Resolve(context.Background(), "ZZ99ZZ")
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestDirectoryResolveEmptyCode(t *testing.T) {
	store := newFakeDirectoryStore()
	d := newTestDirectory(store)

	_, err := d.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrStoreNotFound)
	assert.Equal(t, 0, store.lookupCount())
}

func TestDirectoryNotFoundNotCached(t *testing.T) {
	store := newFakeDirectoryStore()
	d := newTestDirectory(store)

	_, err := d.Resolve(context.Background(), "AB12CD")
	require.ErrorIs(t, err, ErrStoreNotFound)

	// The store appears (setup completed); the next resolve sees it.
	store.mu.Lock()
	store.stores["AB12CD"] = &model.Store{Code: "AB12CD", TenantID: "tenant_a"}
	store.mu.Unlock()

	resolved, err := d.Resolve(context.Background(), "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "tenant_a", resolved.TenantID)
}

func TestDirectoryForget(t *testing.T) {
	store := newFakeDirectoryStore()
	store.stores["AB12CD"] = &model.Store{Code: "AB12CD", TenantID: "tenant_a"}
	d := newTestDirectory(store)

	_, err := d.Resolve(context.Background(), "AB12CD")
	require.NoError(t, err)

	d.Forget("ab12cd")

	_, err = d.Resolve(context.Background(), "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, 2, store.lookupCount())
}

func TestDirectoryOwnerByEmail(t *testing.T) {
	store := newFakeDirectoryStore()
	store.owners["owner@example.com"] = &model.Owner{Email: "owner@example.com", TenantID: "tenant_a"}
	d := newTestDirectory(store)

	owner, err := d.OwnerByEmail(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, "tenant_a", owner.TenantID)

	_, err = d.OwnerByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}
