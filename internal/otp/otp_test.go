package otp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-service/internal/model"
)

// memStore keeps codes in memory, newest first per phone.
type memStore struct {
	mu      sync.Mutex
	records map[string][]*model.OTP
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string][]*model.OTP)}
}

func (s *memStore) Create(ctx context.Context, otp *model.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[otp.Phone] = append([]*model.OTP{otp}, s.records[otp.Phone]...)
	return nil
}

func (s *memStore) Latest(ctx context.Context, phone string) (*model.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.records[phone]
	if len(records) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return records[0], nil
}

func (s *memStore) Save(ctx context.Context, otp *model.OTP) error {
	return nil
}

// captureSender remembers the last code it delivered.
type captureSender struct {
	mu    sync.Mutex
	phone string
	code  string
}

func (s *captureSender) Send(ctx context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phone = phone
	s.code = code
	return nil
}

func (s *captureSender) last() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phone, s.code
}

func newTestService(store Store, sender Sender) *Service {
	return NewService(store, sender, Config{
		TTL:         time.Minute,
		MaxAttempts: 3,
		CodeLength:  6,
	}, nil)
}

func TestRequestIssuesCode(t *testing.T) {
	store := newMemStore()
	sender := &captureSender{}
	svc := newTestService(store, sender)

	require.NoError(t, svc.Request(context.Background(), "5550100"))

	phone, code := sender.last()
	assert.Equal(t, "5550100", phone)
	assert.Len(t, code, 6)

	record, err := store.Latest(context.Background(), "5550100")
	require.NoError(t, err)
	// The code is stored hashed, never in the clear.
	assert.NotEqual(t, code, record.CodeHash)
	assert.Equal(t, hashCode(code), record.CodeHash)
	assert.WithinDuration(t, time.Now().Add(time.Minute), record.ExpiresAt, 5*time.Second)
}

func TestVerifySuccess(t *testing.T) {
	store := newMemStore()
	sender := &captureSender{}
	svc := newTestService(store, sender)

	require.NoError(t, svc.Request(context.Background(), "5550100"))
	_, code := sender.last()

	assert.NoError(t, svc.Verify(context.Background(), "5550100", code))

	// A consumed code cannot be replayed.
	assert.ErrorIs(t, svc.Verify(context.Background(), "5550100", code), ErrNotFound)
}

func TestVerifyWrongCode(t *testing.T) {
	store := newMemStore()
	sender := &captureSender{}
	svc := newTestService(store, sender)

	require.NoError(t, svc.Request(context.Background(), "5550100"))

	assert.ErrorIs(t, svc.Verify(context.Background(), "5550100", "000000"), ErrInvalidCode)

	// The right code still works after a wrong guess.
	_, code := sender.last()
	assert.NoError(t, svc.Verify(context.Background(), "5550100", code))
}

func TestVerifyAttemptLimit(t *testing.T) {
	store := newMemStore()
	sender := &captureSender{}
	svc := newTestService(store, sender)

	require.NoError(t, svc.Request(context.Background(), "5550100"))
	_, code := sender.last()

	assert.ErrorIs(t, svc.Verify(context.Background(), "5550100", "000000"), ErrInvalidCode)
	assert.ErrorIs(t, svc.Verify(context.Background(), "5550100", "000000"), ErrInvalidCode)
	assert.ErrorIs(t, svc.Verify(context.Background(), "5550100", "000000"), ErrTooManyAttempts)

	// Even the right code is rejected once the limit is hit.
	assert.ErrorIs(t, svc.Verify(context.Background(), "5550100", code), ErrTooManyAttempts)
}

func TestVerifyExpiredCode(t *testing.T) {
	store := newMemStore()
	sender := &captureSender{}
	svc := newTestService(store, sender)

	require.NoError(t, svc.Request(context.Background(), "5550100"))
	record, err := store.Latest(context.Background(), "5550100")
	require.NoError(t, err)
	record.ExpiresAt = time.Now().Add(-time.Second)

	_, code := sender.last()
	assert.ErrorIs(t, svc.Verify(context.Background(), "5550100", code), ErrExpired)
}

func TestVerifyUnknownPhone(t *testing.T) {
	svc := newTestService(newMemStore(), &captureSender{})
	assert.ErrorIs(t, svc.Verify(context.Background(), "5550199", "123456"), ErrNotFound)
}

func TestRequestSupersedesPreviousCode(t *testing.T) {
	store := newMemStore()
	sender := &captureSender{}
	svc := newTestService(store, sender)

	require.NoError(t, svc.Request(context.Background(), "5550100"))
	_, first := sender.last()
	require.NoError(t, svc.Request(context.Background(), "5550100"))
	_, second := sender.last()

	if first == second {
		t.Skip("generated codes collided")
	}
	// Only the latest code verifies.
	assert.ErrorIs(t, svc.Verify(context.Background(), "5550100", first), ErrInvalidCode)
	assert.NoError(t, svc.Verify(context.Background(), "5550100", second))
}
