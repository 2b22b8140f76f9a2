package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "otp:"

type OTPStore interface {
	Save(ctx context.Context, phone, code string, ttl time.Duration) error
	// Get returns ok=false when no code is stored for phone.
	Get(ctx context.Context, phone string) (code string, ok bool, err error)
	Delete(ctx context.Context, phone string) error
}

type otpStoreImpl struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) OTPStore {
	return &otpStoreImpl{
		client: client,
	}
}

func (s *otpStoreImpl) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.client.Set(ctx, otpKeyPrefix+phone, code, ttl).Err()
}

func (s *otpStoreImpl) Get(ctx context.Context, phone string) (string, bool, error) {
	code, err := s.client.Get(ctx, otpKeyPrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load otp: %w", err)
	}
	return code, true, nil
}

func (s *otpStoreImpl) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, otpKeyPrefix+phone).Err()
}
