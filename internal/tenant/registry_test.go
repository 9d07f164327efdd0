package tenant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeOpener hands out bare gorm handles and records every open, with an
// optional queue of errors to fail with first.
type fakeOpener struct {
	mu       sync.Mutex
	opens    map[string]int
	failures map[string]int
	delay    time.Duration
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{
		opens:    make(map[string]int),
		failures: make(map[string]int),
	}
}

func (o *fakeOpener) Open(ctx context.Context, tenantID string) (*gorm.DB, error) {
	if o.delay > 0 {
		time.Sleep(o.delay)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens[tenantID]++
	if o.failures[tenantID] > 0 {
		o.failures[tenantID]--
		return nil, errors.New("connection refused")
	}
	return &gorm.DB{Config: &gorm.Config{}}, nil
}

func (o *fakeOpener) openCount(tenantID string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens[tenantID]
}

// noopBinder never touches the database.
type noopBinder struct{}

func (noopBinder) Bind(ctx context.Context, db *gorm.DB, kind Kind, prototype interface{}) error {
	return nil
}

func newTestRegistry(opener Opener, maxConns int) *Registry {
	return NewRegistry(RegistryOptions{
		Opener:   opener,
		Binder:   noopBinder{},
		MaxConns: maxConns,
	})
}

func TestRegistryConnOpensLazily(t *testing.T) {
	opener := newFakeOpener()
	r := newTestRegistry(opener, 0)

	assert.Equal(t, 0, r.Len())

	conn, err := r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)
	assert.Equal(t, "tenant_a", conn.TenantID())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, opener.openCount("tenant_a"))
}

func TestRegistryConnReusesHandle(t *testing.T) {
	opener := newFakeOpener()
	r := newTestRegistry(opener, 0)

	first, err := r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)
	second, err := r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, opener.openCount("tenant_a"))
}

func TestRegistryConnSingleFlight(t *testing.T) {
	opener := newFakeOpener()
	opener.delay = 10 * time.Millisecond
	r := newTestRegistry(opener, 0)

	const callers = 50
	conns := make([]*Conn, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			conn, err := r.Conn(context.Background(), "tenant_a")
			assert.NoError(t, err)
			conns[i] = conn
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, opener.openCount("tenant_a"))
	for i := 1; i < callers; i++ {
		assert.Same(t, conns[0], conns[i])
	}
}

func TestRegistryConnPerTenant(t *testing.T) {
	opener := newFakeOpener()
	r := newTestRegistry(opener, 0)

	a, err := r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)
	b, err := r.Conn(context.Background(), "tenant_b")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 1, opener.openCount("tenant_a"))
	assert.Equal(t, 1, opener.openCount("tenant_b"))
}

func TestRegistryFailedOpenNotCached(t *testing.T) {
	opener := newFakeOpener()
	opener.failures["tenant_a"] = 1
	r := newTestRegistry(opener, 0)

	_, err := r.Conn(context.Background(), "tenant_a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Equal(t, 0, r.Len())

	// The next request retries the open instead of replaying the failure.
	conn, err := r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)
	assert.Equal(t, "tenant_a", conn.TenantID())
	assert.Equal(t, 2, opener.openCount("tenant_a"))
}

func TestRegistryEmptyTenantID(t *testing.T) {
	r := newTestRegistry(newFakeOpener(), 0)

	_, err := r.Conn(context.Background(), "")
	assert.ErrorIs(t, err, ErrTenantIDMissing)
}

func TestRegistryCapacityEviction(t *testing.T) {
	opener := newFakeOpener()
	r := newTestRegistry(opener, 2)

	_, err := r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = r.Conn(context.Background(), "tenant_b")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = r.Conn(context.Background(), "tenant_c")
	require.NoError(t, err)

	// tenant_a was the oldest-idle handle and gets evicted.
	assert.Equal(t, 2, r.Len())
	_, err = r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)
	assert.Equal(t, 2, opener.openCount("tenant_a"))
}

func TestRegistryCapacityKeepsNewest(t *testing.T) {
	opener := newFakeOpener()
	r := newTestRegistry(opener, 1)

	_, err := r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	conn, err := r.Conn(context.Background(), "tenant_b")
	require.NoError(t, err)

	assert.Equal(t, 1, r.Len())
	again, err := r.Conn(context.Background(), "tenant_b")
	require.NoError(t, err)
	assert.Same(t, conn, again)
	assert.Equal(t, 1, opener.openCount("tenant_b"))
}

func TestRegistrySweepEvictsIdle(t *testing.T) {
	opener := newFakeOpener()
	r := NewRegistry(RegistryOptions{
		Opener:  opener,
		Binder:  noopBinder{},
		IdleTTL: time.Minute,
	})

	conn, err := r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	// Nothing is older than the TTL yet.
	r.sweep(time.Now())
	assert.Equal(t, 1, r.Len())

	r.sweep(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, r.Len())
	assert.True(t, conn.closed.Load())
}

func TestRegistrySweepSparesRecentlyUsed(t *testing.T) {
	opener := newFakeOpener()
	r := NewRegistry(RegistryOptions{
		Opener:  opener,
		Binder:  noopBinder{},
		IdleTTL: time.Minute,
	})

	stale, err := r.Conn(context.Background(), "tenant_stale")
	require.NoError(t, err)
	fresh, err := r.Conn(context.Background(), "tenant_fresh")
	require.NoError(t, err)

	stale.lastUsed.Store(time.Now().Add(-2 * time.Minute).UnixNano())
	fresh.touch()

	r.sweep(time.Now())
	assert.Equal(t, 1, r.Len())

	again, err := r.Conn(context.Background(), "tenant_fresh")
	require.NoError(t, err)
	assert.Same(t, fresh, again)
}

func TestRegistryClose(t *testing.T) {
	opener := newFakeOpener()
	r := newTestRegistry(opener, 0)

	conn, err := r.Conn(context.Background(), "tenant_a")
	require.NoError(t, err)

	_ = r.Close()
	assert.Equal(t, 0, r.Len())
	assert.True(t, conn.closed.Load())

	_, err = r.Conn(context.Background(), "tenant_a")
	assert.ErrorIs(t, err, ErrRegistryClosed)
}
