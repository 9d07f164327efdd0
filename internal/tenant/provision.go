package tenant

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"
)

// ErrStoreAlreadySetup means the owner has already completed store setup;
// the store code is immutable once assigned.
var ErrStoreAlreadySetup = errors.New("store already set up")

const storeCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewTenantID generates an opaque, globally unique tenant identifier:
// creation time in unix milliseconds plus a random hex suffix. The ID
// doubles as the tenant database name suffix, so it stays lowercase
// alphanumeric.
func NewTenantID() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%d%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}

// NewStoreCode generates a 6-character public store code. The alphabet
// skips easily-confused characters.
func NewStoreCode() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	code := make([]byte, 6)
	for i, v := range b {
		code[i] = storeCodeAlphabet[int(v)%len(storeCodeAlphabet)]
	}
	return string(code)
}

// ProvisionStore is the write surface the provisioner needs on the global
// directory database and the database cluster.
type ProvisionStore interface {
	CreateTenantDatabase(ctx context.Context, name string) error
	CreateOwner(ctx context.Context, owner *model.Owner) error
	CreateStore(ctx context.Context, store *model.Store) error
	SetOwnerStore(ctx context.Context, ownerID uint, storeID string) error
	StoreCodeTaken(ctx context.Context, code string) (bool, error)
}

// GormProvisionStore implements ProvisionStore over the global database.
type GormProvisionStore struct {
	db *gorm.DB
}

// NewGormProvisionStore wraps the global database handle.
func NewGormProvisionStore(db *gorm.DB) *GormProvisionStore {
	return &GormProvisionStore{db: db}
}

// CreateTenantDatabase creates the tenant's logical database. An existing
// database of the same name is fine: provisioning is retryable.
func (s *GormProvisionStore) CreateTenantDatabase(ctx context.Context, name string) error {
	// CREATE DATABASE cannot be parameterized; the name is generated
	// internally and validated before quoting.
	if !validDatabaseName(name) {
		return fmt.Errorf("invalid tenant database name %q", name)
	}
	err := s.db.WithContext(ctx).Exec(fmt.Sprintf("CREATE DATABASE %q", name)).Error
	if err != nil && strings.Contains(err.Error(), "42P04") { // duplicate_database
		return nil
	}
	return err
}

// CreateOwner implements ProvisionStore.
func (s *GormProvisionStore) CreateOwner(ctx context.Context, owner *model.Owner) error {
	return s.db.WithContext(ctx).Create(owner).Error
}

// CreateStore implements ProvisionStore.
func (s *GormProvisionStore) CreateStore(ctx context.Context, store *model.Store) error {
	return s.db.WithContext(ctx).Create(store).Error
}

// SetOwnerStore implements ProvisionStore.
func (s *GormProvisionStore) SetOwnerStore(ctx context.Context, ownerID uint, storeID string) error {
	return s.db.WithContext(ctx).Model(&model.Owner{}).
		Where("id = ?", ownerID).
		Update("store_id", storeID).Error
}

// StoreCodeTaken implements ProvisionStore.
func (s *GormProvisionStore) StoreCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Store{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func validDatabaseName(name string) bool {
	if name == "" || len(name) > 63 {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

// Provisioner creates tenants: at registration it mints the tenant ID and
// its isolated database plus the directory record; at store setup it
// assigns the public store code.
type Provisioner struct {
	store ProvisionStore
	cfg   config.TenantDBConfig
	log   *zap.Logger
}

// NewProvisioner creates a tenant provisioner.
func NewProvisioner(store ProvisionStore, cfg config.TenantDBConfig, log *zap.Logger) *Provisioner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provisioner{store: store, cfg: cfg, log: log}
}

// Register provisions a brand-new tenant for an owner: tenant ID, isolated
// database, and the global directory record.
func (p *Provisioner) Register(ctx context.Context, email, passwordHash, phone string) (*model.Owner, error) {
	tenantID := NewTenantID()

	if err := p.store.CreateTenantDatabase(ctx, p.cfg.DatabaseName(tenantID)); err != nil {
		return nil, fmt.Errorf("failed to create tenant database: %w", err)
	}

	owner := &model.Owner{
		Email:    email,
		Password: passwordHash,
		Phone:    phone,
		TenantID: tenantID,
		Active:   true,
	}
	if err := p.store.CreateOwner(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to create owner record: %w", err)
	}

	p.log.Info("tenant provisioned",
		zap.String("tenant_id", tenantID),
		zap.String("email", email))
	return owner, nil
}

// SetupStore assigns a unique public store code to the owner's tenant and
// writes the store directory record. The code is immutable afterwards.
func (p *Provisioner) SetupStore(ctx context.Context, owner *model.Owner, name, currency, industry string) (*model.Store, error) {
	if owner.StoreID != "" {
		return nil, ErrStoreAlreadySetup
	}

	var code string
	for attempt := 0; attempt < 5; attempt++ {
		candidate := NewStoreCode()
		taken, err := p.store.StoreCodeTaken(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("store code check failed: %w", err)
		}
		if !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, errors.New("could not allocate a unique store code")
	}

	store := &model.Store{
		Code:     code,
		Name:     name,
		TenantID: owner.TenantID,
		OwnerID:  owner.ID,
		Currency: currency,
		Industry: industry,
		Active:   true,
	}
	if err := p.store.CreateStore(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to create store record: %w", err)
	}
	if err := p.store.SetOwnerStore(ctx, owner.ID, code); err != nil {
		return nil, fmt.Errorf("failed to attach store to owner: %w", err)
	}
	owner.StoreID = code

	p.log.Info("store set up",
		zap.String("tenant_id", owner.TenantID),
		zap.String("store_id", code),
		zap.String("name", name))
	return store, nil
}
