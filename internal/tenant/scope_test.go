package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/model"
)

func TestScopeCachesAccessors(t *testing.T) {
	binder := newCountingBinder()
	conn := newTestConn(binder)
	scope := NewScope("tenant_a", "AB12CD", nil, conn)

	first, err := scope.Entity(context.Background(), KindProduct)
	require.NoError(t, err)
	second, err := scope.Entity(context.Background(), KindProduct)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, binder.bindCount(KindProduct))
}

func TestScopeSharesConnectionBinds(t *testing.T) {
	binder := newCountingBinder()
	conn := newTestConn(binder)

	// Two requests against the same tenant share one connection; the second
	// scope reuses the bind the first one triggered.
	reqA := NewScope("tenant_a", "AB12CD", nil, conn)
	reqB := NewScope("tenant_a", "AB12CD", nil, conn)

	fromA, err := reqA.Entity(context.Background(), KindOrder)
	require.NoError(t, err)
	fromB, err := reqB.Entity(context.Background(), KindOrder)
	require.NoError(t, err)

	assert.Same(t, fromA, fromB)
	assert.Equal(t, 1, binder.bindCount(KindOrder))
}

func TestScopeCarriesIdentity(t *testing.T) {
	conn := newTestConn(newCountingBinder())
	store := &model.Store{Code: "AB12CD", TenantID: "tenant_a", Name: "Acme"}
	scope := NewScope("tenant_a", "AB12CD", store, conn)

	assert.Equal(t, "tenant_a", scope.TenantID)
	assert.Equal(t, "AB12CD", scope.StoreID)
	assert.Same(t, store, scope.Store)
	assert.Same(t, conn, scope.Conn())
}
