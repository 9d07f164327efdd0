package tenant

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"
)

// fakeProvisionStore records provisioning writes in memory.
type fakeProvisionStore struct {
	mu             sync.Mutex
	databases      []string
	owners         []*model.Owner
	stores         []*model.Store
	takenFirst     int // report the first N code candidates as taken
	codeChecks     int
	ownerStoreSets map[uint]string
}

func newFakeProvisionStore() *fakeProvisionStore {
	return &fakeProvisionStore{ownerStoreSets: make(map[uint]string)}
}

func (s *fakeProvisionStore) CreateTenantDatabase(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.databases = append(s.databases, name)
	return nil
}

func (s *fakeProvisionStore) CreateOwner(ctx context.Context, owner *model.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner.ID = uint(len(s.owners) + 1)
	s.owners = append(s.owners, owner)
	return nil
}

func (s *fakeProvisionStore) CreateStore(ctx context.Context, store *model.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores = append(s.stores, store)
	return nil
}

func (s *fakeProvisionStore) SetOwnerStore(ctx context.Context, ownerID uint, storeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerStoreSets[ownerID] = storeID
	return nil
}

func (s *fakeProvisionStore) StoreCodeTaken(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codeChecks++
	return s.codeChecks <= s.takenFirst, nil
}

func testTenantDBConfig() config.TenantDBConfig {
	return config.TenantDBConfig{NamePrefix: "tenant_"}
}

func TestNewTenantID(t *testing.T) {
	id := NewTenantID()
	assert.NotEmpty(t, id)

	// The ID doubles as a database name suffix.
	assert.True(t, validDatabaseName("tenant_"+id), "id %q must form a valid database name", id)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[NewTenantID()] = true
	}
	assert.Len(t, seen, 100)
}

func TestNewStoreCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewStoreCode()
		require.Len(t, code, 6)
		for _, r := range code {
			assert.Contains(t, storeCodeAlphabet, string(r))
		}
		seen[code] = true
	}
	// Collisions over 100 draws from a 31^6 space would indicate a broken generator.
	assert.Greater(t, len(seen), 90)
}

func TestProvisionerRegister(t *testing.T) {
	store := newFakeProvisionStore()
	p := NewProvisioner(store, testTenantDBConfig(), nil)

	owner, err := p.Register(context.Background(), "owner@example.com", "hashed", "5550100")
	require.NoError(t, err)

	assert.NotEmpty(t, owner.TenantID)
	assert.Equal(t, "owner@example.com", owner.Email)
	assert.Equal(t, "hashed", owner.Password)
	assert.True(t, owner.Active)
	assert.Empty(t, owner.StoreID)

	require.Len(t, store.databases, 1)
	assert.Equal(t, "tenant_"+owner.TenantID, store.databases[0])
	require.Len(t, store.owners, 1)
	assert.Same(t, owner, store.owners[0])
}

func TestProvisionerRegisterDistinctTenants(t *testing.T) {
	store := newFakeProvisionStore()
	p := NewProvisioner(store, testTenantDBConfig(), nil)

	a, err := p.Register(context.Background(), "a@example.com", "hash", "")
	require.NoError(t, err)
	b, err := p.Register(context.Background(), "b@example.com", "hash", "")
	require.NoError(t, err)

	assert.NotEqual(t, a.TenantID, b.TenantID)
	assert.Len(t, store.databases, 2)
}

func TestProvisionerSetupStore(t *testing.T) {
	store := newFakeProvisionStore()
	p := NewProvisioner(store, testTenantDBConfig(), nil)

	owner, err := p.Register(context.Background(), "owner@example.com", "hash", "")
	require.NoError(t, err)

	created, err := p.SetupStore(context.Background(), owner, "Acme Goods", "INR", "retail")
	require.NoError(t, err)

	assert.Len(t, created.Code, 6)
	assert.Equal(t, owner.TenantID, created.TenantID)
	assert.Equal(t, owner.ID, created.OwnerID)
	assert.Equal(t, "Acme Goods", created.Name)
	assert.True(t, created.Active)

	assert.Equal(t, created.Code, owner.StoreID)
	assert.Equal(t, created.Code, store.ownerStoreSets[owner.ID])
}

func TestProvisionerSetupStoreRetriesCollisions(t *testing.T) {
	store := newFakeProvisionStore()
	store.takenFirst = 2
	p := NewProvisioner(store, testTenantDBConfig(), nil)

	owner := &model.Owner{ID: 7, TenantID: "tenant_a"}
	created, err := p.SetupStore(context.Background(), owner, "Acme", "INR", "")
	require.NoError(t, err)

	assert.Len(t, created.Code, 6)
	assert.Equal(t, 3, store.codeChecks)
}

func TestProvisionerSetupStoreExhaustsRetries(t *testing.T) {
	store := newFakeProvisionStore()
	store.takenFirst = 100
	p := NewProvisioner(store, testTenantDBConfig(), nil)

	owner := &model.Owner{ID: 7, TenantID: "tenant_a"}
	_, err := p.SetupStore(context.Background(), owner, "Acme", "INR", "")
	require.Error(t, err)
	assert.Empty(t, store.stores)
}

func TestProvisionerSetupStoreOnlyOnce(t *testing.T) {
	store := newFakeProvisionStore()
	p := NewProvisioner(store, testTenantDBConfig(), nil)

	owner := &model.Owner{ID: 7, TenantID: "tenant_a", StoreID: "AB12CD"}
	_, err := p.SetupStore(context.Background(), owner, "Acme", "INR", "")
	assert.ErrorIs(t, err, ErrStoreAlreadySetup)
}

func TestValidDatabaseName(t *testing.T) {
	assert.True(t, validDatabaseName("tenant_1756500000000abc"))
	assert.False(t, validDatabaseName(""))
	assert.False(t, validDatabaseName("Tenant_A"))
	assert.False(t, validDatabaseName(`tenant"; DROP DATABASE x`))
	assert.False(t, validDatabaseName(strings.Repeat("a", 64)))
}
