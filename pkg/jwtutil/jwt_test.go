package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := util.GenerateToken("owner@example.com", 42, "tenant_a", "AB12CD", "owner")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, uint(42), claims.OwnerID)
	assert.Equal(t, "tenant_a", claims.TenantID)
	assert.Equal(t, "AB12CD", claims.StoreID)
	assert.Equal(t, "owner", claims.Role)
}

func TestTokenWithoutStore(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := util.GenerateToken("owner@example.com", 42, "tenant_a", "", "owner")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tenant_a", claims.TenantID)
	assert.Empty(t, claims.StoreID)
}

func TestValidateExpiredToken(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: -1})

	token, err := util.GenerateToken("owner@example.com", 42, "tenant_a", "", "owner")
	require.NoError(t, err)

	_, err = util.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenWrongKey(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	token, err := util.GenerateToken("owner@example.com", 42, "tenant_a", "", "owner")
	require.NoError(t, err)

	other := NewJWTUtil(&JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateGarbageToken(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	_, err := util.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestNilConfig(t *testing.T) {
	util := NewJWTUtil(nil)
	_, err := util.GenerateToken("owner@example.com", 1, "tenant_a", "", "owner")
	assert.Error(t, err)
	_, err = util.ValidateToken("whatever")
	assert.Error(t, err)
}
