package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecell-kiet/recruitment-api/internal/models"
)

// ErrOTPNotFound signals that no pending OTP exists for the email, either
// because none was requested or because it expired.
var ErrOTPNotFound = errors.New("otp not found")

// OTPStore keeps pending one-time passwords in Redis so they expire on
// their own and never touch the primary database.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore creates a new instance of OTPStore.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(email string) string {
	return "otp:" + email
}

// Put stores a fresh OTP for the email, replacing any pending one.
func (s *OTPStore) Put(ctx context.Context, record models.OTPRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	if err := s.client.Set(ctx, otpKey(record.Email), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Get returns the pending OTP for the email.
func (s *OTPStore) Get(ctx context.Context, email string) (*models.OTPRecord, error) {
	data, err := s.client.Get(ctx, otpKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("load otp: %w", err)
	}
	var record models.OTPRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return &record, nil
}

// RecordAttempt increments the attempt counter without extending the TTL.
func (s *OTPStore) RecordAttempt(ctx context.Context, record *models.OTPRecord) error {
	record.Attempts++
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	// KEEPTTL preserves the original expiry window across attempt updates.
	if err := s.client.Set(ctx, otpKey(record.Email), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("update otp attempts: %w", err)
	}
	return nil
}

// Delete removes the pending OTP after a successful or exhausted login.
func (s *OTPStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
