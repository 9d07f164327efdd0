package otp

import (
	"context"

	"gorm.io/gorm"

	"storefront-service/internal/model"
)

// GormStore implements Store over the global directory database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps the global database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create implements Store.
func (s *GormStore) Create(ctx context.Context, otp *model.OTP) error {
	return s.db.WithContext(ctx).Create(otp).Error
}

// Latest implements Store.
func (s *GormStore) Latest(ctx context.Context, phone string) (*model.OTP, error) {
	var record model.OTP
	err := s.db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Save implements Store.
func (s *GormStore) Save(ctx context.Context, otp *model.OTP) error {
	return s.db.WithContext(ctx).Save(otp).Error
}

// LogSender is a development Sender that only logs the code instead of
// calling an SMS gateway.
type LogSender struct {
	Log func(phone, code string)
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, phone, code string) error {
	if s.Log != nil {
		s.Log(phone, code)
	}
	return nil
}
