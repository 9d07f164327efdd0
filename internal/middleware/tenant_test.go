package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"storefront-service/internal/model"
	"storefront-service/internal/tenant"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
)

type stubDirectoryStore struct {
	stores map[string]*model.Store
}

func (s *stubDirectoryStore) StoreByCode(ctx context.Context, code string) (*model.Store, error) {
	store, ok := s.stores[code]
	if !ok {
		return nil, tenant.ErrStoreNotFound
	}
	return store, nil
}

func (s *stubDirectoryStore) OwnerByEmail(ctx context.Context, email string) (*model.Owner, error) {
	return nil, tenant.ErrOwnerNotFound
}

type stubOpener struct {
	fail bool
}

func (o *stubOpener) Open(ctx context.Context, tenantID string) (*gorm.DB, error) {
	if o.fail {
		return nil, errors.New("connection refused")
	}
	return &gorm.DB{Config: &gorm.Config{}}, nil
}

type stubBinder struct{}

func (stubBinder) Bind(ctx context.Context, db *gorm.DB, kind tenant.Kind, prototype interface{}) error {
	return nil
}

type tenantTestEnv struct {
	directory *tenant.Directory
	registry  *tenant.Registry
}

func newTenantTestEnv(opener tenant.Opener, stores ...*model.Store) *tenantTestEnv {
	byCode := make(map[string]*model.Store)
	for _, s := range stores {
		byCode[s.Code] = s
	}
	return &tenantTestEnv{
		directory: tenant.NewDirectory(tenant.DirectoryOptions{
			Store:    &stubDirectoryStore{stores: byCode},
			CacheTTL: time.Minute,
		}),
		registry: tenant.NewRegistry(tenant.RegistryOptions{
			Opener: opener,
			Binder: stubBinder{},
		}),
	}
}

// run sends a request through the tenant middleware and captures the scope
// the downstream handler observed.
func (env *tenantTestEnv) run(t *testing.T, prepare func(c echo.Context)) (*httptest.ResponseRecorder, *tenant.Scope) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if prepare != nil {
		prepare(c)
	}

	var seen *tenant.Scope
	handler := TenantContextMiddleware(env.directory, env.registry)(func(c echo.Context) error {
		scope, ok := ScopeFromEcho(c)
		require.True(t, ok)
		seen = scope
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, seen
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestTenantMiddlewareResolvesStoreCodeParam(t *testing.T) {
	env := newTenantTestEnv(&stubOpener{}, &model.Store{Code: "AB12CD", TenantID: "tenant_a", Name: "Acme"})

	rec, scope := env.run(t, func(c echo.Context) {
		c.SetParamNames("store_id")
		c.SetParamValues("AB12CD")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, scope)
	assert.Equal(t, "tenant_a", scope.TenantID)
	assert.Equal(t, "AB12CD", scope.StoreID)
	require.NotNil(t, scope.Store)
	assert.Equal(t, "Acme", scope.Store.Name)
}

func TestTenantMiddlewareResolvesHeader(t *testing.T) {
	env := newTenantTestEnv(&stubOpener{}, &model.Store{Code: "AB12CD", TenantID: "tenant_a"})

	rec, scope := env.run(t, func(c echo.Context) {
		c.Request().Header.Set("X-Store-ID", "AB12CD")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant_a", scope.TenantID)
}

func TestTenantMiddlewareResolvesSubdomain(t *testing.T) {
	env := newTenantTestEnv(&stubOpener{}, &model.Store{Code: "AB12CD", TenantID: "tenant_a"})

	rec, scope := env.run(t, func(c echo.Context) {
		c.Request().Host = "ab12cd.example.com"
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant_a", scope.TenantID)
}

func TestTenantMiddlewareStoreCodeBeatsClaim(t *testing.T) {
	env := newTenantTestEnv(&stubOpener{},
		&model.Store{Code: "AB12CD", TenantID: "tenant_a"},
		&model.Store{Code: "XY34ZW", TenantID: "tenant_b"})

	// The token belongs to tenant_b, but the request addresses tenant_a's
	// store. The addressing wins.
	rec, scope := env.run(t, func(c echo.Context) {
		c.SetParamNames("store_id")
		c.SetParamValues("AB12CD")
		c.Set("user", &jwtutil.OwnerClaims{TenantID: "tenant_b", StoreID: "XY34ZW"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant_a", scope.TenantID)
	assert.Equal(t, "AB12CD", scope.StoreID)
}

func TestTenantMiddlewareFallsBackToClaim(t *testing.T) {
	env := newTenantTestEnv(&stubOpener{}, &model.Store{Code: "XY34ZW", TenantID: "tenant_b"})

	rec, scope := env.run(t, func(c echo.Context) {
		c.Set("user", &jwtutil.OwnerClaims{TenantID: "tenant_b", StoreID: "XY34ZW"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant_b", scope.TenantID)
	assert.Equal(t, "XY34ZW", scope.StoreID)
	require.NotNil(t, scope.Store)
}

func TestTenantMiddlewareUnknownStore(t *testing.T) {
	env := newTenantTestEnv(&stubOpener{})

	rec, scope := env.run(t, func(c echo.Context) {
		c.SetParamNames("store_id")
		c.SetParamValues("ZZ99ZZ")
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, scope)
	assert.Equal(t, "TENANT_NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestTenantMiddlewareNoTenantSignal(t *testing.T) {
	env := newTenantTestEnv(&stubOpener{})

	rec, scope := env.run(t, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, scope)
	assert.Equal(t, "TENANT_ID_MISSING", decodeBody(t, rec)["code"])
}

func TestTenantMiddlewareConnectionFailure(t *testing.T) {
	env := newTenantTestEnv(&stubOpener{fail: true}, &model.Store{Code: "AB12CD", TenantID: "tenant_a"})

	rec, scope := env.run(t, func(c echo.Context) {
		c.SetParamNames("store_id")
		c.SetParamValues("AB12CD")
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Nil(t, scope)
	assert.Equal(t, "TENANT_UNAVAILABLE", decodeBody(t, rec)["code"])
}

func TestTenantMiddlewareStampsRequestLogger(t *testing.T) {
	env := newTenantTestEnv(&stubOpener{}, &model.Store{Code: "AB12CD", TenantID: "tenant_a"})

	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("logger", zap.New(core))
	c.SetParamNames("store_id")
	c.SetParamValues("AB12CD")

	handler := TenantContextMiddleware(env.directory, env.registry)(func(c echo.Context) error {
		logger.FromEcho(c).Info("handled")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "tenant_a", logs.All()[0].ContextMap()["tenant_id"])
}

func TestStoreCodeFromHost(t *testing.T) {
	assert.Equal(t, "ab12cd", storeCodeFromHost("ab12cd.example.com"))
	assert.Equal(t, "ab12cd", storeCodeFromHost("ab12cd.example.com:8080"))
	assert.Equal(t, "", storeCodeFromHost("example.com"))
	assert.Equal(t, "", storeCodeFromHost("www1234.example.com:8080"))
	assert.Equal(t, "", storeCodeFromHost("localhost:8080"))
	assert.Equal(t, "", storeCodeFromHost("ab.example.com"))
}
