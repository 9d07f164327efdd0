package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"storefront-service/internal/model"
)

// Verification errors.
var (
	ErrNotFound        = errors.New("no pending code for this phone")
	ErrExpired         = errors.New("code expired")
	ErrInvalidCode     = errors.New("invalid code")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Store is the persistence surface for one-time passcodes.
type Store interface {
	Create(ctx context.Context, otp *model.OTP) error
	Latest(ctx context.Context, phone string) (*model.OTP, error)
	Save(ctx context.Context, otp *model.OTP) error
}

// Sender delivers a code to a phone. The production sender talks to an
// external SMS gateway; it is injected so this service never depends on one.
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

// Service issues and verifies TTL-bounded, attempt-limited one-time
// passcodes. Codes are hashed at rest.
type Service struct {
	store       Store
	sender      Sender
	ttl         time.Duration
	maxAttempts int
	codeLength  int
	log         *zap.Logger
}

// Config holds OTP service settings.
type Config struct {
	TTL         time.Duration
	MaxAttempts int
	CodeLength  int
}

// NewService creates an OTP service.
func NewService(store Store, sender Sender, cfg Config, log *zap.Logger) *Service {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:       store,
		sender:      sender,
		ttl:         cfg.TTL,
		maxAttempts: cfg.MaxAttempts,
		codeLength:  cfg.CodeLength,
		log:         log,
	}
}

// Request issues a fresh code for the phone and hands it to the sender.
func (s *Service) Request(ctx context.Context, phone string) error {
	code, err := generateCode(s.codeLength)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	record := &model.OTP{
		Phone:     phone,
		CodeHash:  hashCode(code),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.store.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.sender.Send(ctx, phone, code); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}

	s.log.Info("OTP issued", zap.String("phone", phone))
	return nil
}

// Verify checks a submitted code against the latest pending one for the
// phone, counting attempts and consuming the code on success.
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	record, err := s.store.Latest(ctx, phone)
	if err != nil {
		return ErrNotFound
	}
	if record.Consumed {
		return ErrNotFound
	}
	if time.Now().After(record.ExpiresAt) {
		return ErrExpired
	}
	if record.Attempts >= s.maxAttempts {
		return ErrTooManyAttempts
	}

	record.Attempts++
	if hashCode(code) != record.CodeHash {
		if err := s.store.Save(ctx, record); err != nil {
			s.log.Warn("failed to record OTP attempt", zap.Error(err))
		}
		if record.Attempts >= s.maxAttempts {
			return ErrTooManyAttempts
		}
		return ErrInvalidCode
	}

	record.Consumed = true
	if err := s.store.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}
	return nil
}

func generateCode(length int) (string, error) {
	max := big.NewInt(10)
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

func hashCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}
