package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/pkg/auth"
)

const (
	otpDigits      = 6
	maxOTPAttempts = 5
	keyPrefix      = "otp:"
)

// OTPStore keeps bcrypt-hashed one-time codes in Redis.
// A code is valid for ttl, tolerates maxOTPAttempts wrong guesses and is deleted once verified.
type OTPStore struct {
	client goredis.Cmdable
	hasher auth.PasswordHasher
	ttl    time.Duration
}

// NewOTPStore creates a store over client.
func NewOTPStore(client goredis.Cmdable, hasher auth.PasswordHasher, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OTPStore{client: client, hasher: hasher, ttl: ttl}
}

func codeKey(key string) string     { return keyPrefix + key }
func attemptsKey(key string) string { return keyPrefix + key + ":attempts" }

// Issue generates a fresh code for key, replacing any previous one.
func (s *OTPStore) Issue(ctx context.Context, key string) (string, error) {
	code, err := auth.GenerateCode(otpDigits)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, codeKey(key), hash, s.ttl)
		pipe.Del(ctx, attemptsKey(key))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify checks code against the stored hash and consumes it on success.
func (s *OTPStore) Verify(ctx context.Context, key, code string) error {
	hash, err := s.client.Get(ctx, codeKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return domainErrors.ErrOTPExpired
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}

	attempts, err := s.client.Incr(ctx, attemptsKey(key)).Result()
	if err != nil {
		return fmt.Errorf("count otp attempt: %w", err)
	}
	if attempts == 1 {
		if err := s.client.Expire(ctx, attemptsKey(key), s.ttl).Err(); err != nil {
			return fmt.Errorf("expire otp attempts: %w", err)
		}
	}
	if attempts > maxOTPAttempts {
		if err := s.Revoke(ctx, key); err != nil {
			return err
		}
		return domainErrors.ErrOTPAttemptsExceeded
	}

	if err := s.hasher.Compare(hash, code); err != nil {
		if errors.Is(err, auth.ErrMismatch) {
			return domainErrors.ErrOTPInvalid
		}
		return err
	}

	// Del reports zero when a concurrent verification already consumed the code.
	var consumed *goredis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		consumed = pipe.Del(ctx, codeKey(key))
		pipe.Del(ctx, attemptsKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if consumed.Val() == 0 {
		return domainErrors.ErrOTPExpired
	}
	return nil
}

// Revoke discards any outstanding code for key together with its attempts counter.
func (s *OTPStore) Revoke(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, codeKey(key), attemptsKey(key)).Err(); err != nil {
		return fmt.Errorf("revoke otp: %w", err)
	}
	return nil
}
