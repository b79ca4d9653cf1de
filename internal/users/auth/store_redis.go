// Copyright (c) 2026 Medibank. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/the-capital-hub/medibank-backend/internal/platform/constants"
)

// # One-Time Code Repository

// RedisCodeRepository implements CodeRepository on Redis with key-level TTL.
//
// Expiry is enforced entirely by Redis; the application never sweeps. A
// missing key is reported as ErrCodeExpired because "never issued", "past
// TTL", and "already consumed" are deliberately indistinguishable.
type RedisCodeRepository struct {
	client *redis.Client
}

// NewCodeRepository creates a new Redis-backed CodeRepository.
func NewCodeRepository(client *redis.Client) *RedisCodeRepository {
	return &RedisCodeRepository{client: client}
}

// Set stores the code under otp:<address>. An existing code is overwritten,
// keeping at most one valid code per address.
func (repository *RedisCodeRepository) Set(context context.Context, address, code string, ttl time.Duration) error {
	key := constants.RedisPrefixOTP + address

	if err := repository.client.Set(context, key, code, ttl).Err(); err != nil {
		return fmt.Errorf("redis_otp_set_failed: %w", err)
	}

	return nil
}

// Get returns the stored code, or ErrCodeExpired when the key is absent.
func (repository *RedisCodeRepository) Get(context context.Context, address string) (string, error) {
	key := constants.RedisPrefixOTP + address

	code, err := repository.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeExpired()
		}
		return "", fmt.Errorf("redis_otp_get_failed: %w", err)
	}

	return code, nil
}

// Delete consumes the code. Deleting an absent key is a no-op.
func (repository *RedisCodeRepository) Delete(context context.Context, address string) error {
	key := constants.RedisPrefixOTP + address

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_otp_delete_failed: %w", err)
	}

	return nil
}

// # Pending Registration Repository

// RedisPendingRepository implements PendingRepository on Redis.
//
// Payloads are stored as JSON under user:temp:<email>, with doctor-role
// credentials parked separately under doctor:temp:<email>.
type RedisPendingRepository struct {
	client *redis.Client
}

// NewPendingRepository creates a new Redis-backed PendingRepository.
func NewPendingRepository(client *redis.Client) *RedisPendingRepository {
	return &RedisPendingRepository{client: client}
}

// SavePending parks the registration payload. Last writer wins.
func (repository *RedisPendingRepository) SavePending(context context.Context, pending *PendingRegistration, ttl time.Duration) error {
	key := constants.RedisPrefixPendingUser + pending.Email

	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("redis_pending_marshal_failed: %w", err)
	}

	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_pending_set_failed: %w", err)
	}

	return nil
}

// GetPending returns the parked payload, or ErrRegistrationExpired when the
// key is absent.
func (repository *RedisPendingRepository) GetPending(context context.Context, email string) (*PendingRegistration, error) {
	key := constants.RedisPrefixPendingUser + email

	payload, err := repository.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRegistrationExpired()
		}
		return nil, fmt.Errorf("redis_pending_get_failed: %w", err)
	}

	pending := &PendingRegistration{}
	if err := json.Unmarshal(payload, pending); err != nil {
		return nil, fmt.Errorf("redis_pending_unmarshal_failed: %w", err)
	}

	return pending, nil
}

// DeletePending removes the payload after account creation.
func (repository *RedisPendingRepository) DeletePending(context context.Context, email string) error {
	key := constants.RedisPrefixPendingUser + email

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_pending_delete_failed: %w", err)
	}

	return nil
}

// SaveDoctorData parks doctor-role professional credentials.
func (repository *RedisPendingRepository) SaveDoctorData(context context.Context, email string, details *DoctorDetails, ttl time.Duration) error {
	key := constants.RedisPrefixPendingDoctor + email

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("redis_doctor_data_marshal_failed: %w", err)
	}

	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_doctor_data_set_failed: %w", err)
	}

	return nil
}

// GetDoctorData returns parked credentials, or ErrSupplementaryDataExpired
// when the key is absent.
func (repository *RedisPendingRepository) GetDoctorData(context context.Context, email string) (*DoctorDetails, error) {
	key := constants.RedisPrefixPendingDoctor + email

	payload, err := repository.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSupplementaryDataExpired()
		}
		return nil, fmt.Errorf("redis_doctor_data_get_failed: %w", err)
	}

	details := &DoctorDetails{}
	if err := json.Unmarshal(payload, details); err != nil {
		return nil, fmt.Errorf("redis_doctor_data_unmarshal_failed: %w", err)
	}

	return details, nil
}

// DeleteDoctorData removes parked credentials after account creation.
func (repository *RedisPendingRepository) DeleteDoctorData(context context.Context, email string) error {
	key := constants.RedisPrefixPendingDoctor + email

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_doctor_data_delete_failed: %w", err)
	}

	return nil
}

// # User Cache

// RedisUserCache implements the canonical by-ID user cache.
type RedisUserCache struct {
	client *redis.Client
}

// NewUserCache creates a new Redis-backed UserCache.
func NewUserCache(client *redis.Client) *RedisUserCache {
	return &RedisUserCache{client: client}
}

// cachedUser is the cache-wire form of a user. PasswordHash must round-trip
// so login-adjacent flows reading the cache can still verify credentials,
// but it rides under a cache-only field name that never reaches clients.
type cachedUser struct {
	User
	PasswordHash string `json:"password_hash"`
}

// Set writes the user under user:<id> with the given TTL.
func (cache *RedisUserCache) Set(context context.Context, user *User, ttl time.Duration) error {
	key := fmt.Sprintf("%s%d", constants.RedisPrefixUserCache, user.ID)

	payload, err := json.Marshal(cachedUser{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return fmt.Errorf("redis_user_cache_marshal_failed: %w", err)
	}

	if err := cache.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_user_cache_set_failed: %w", err)
	}

	return nil
}

// Get returns the cached user, or (nil, nil) on a miss so callers fall
// through to the repository without branching on error types.
func (cache *RedisUserCache) Get(context context.Context, id int64) (*User, error) {
	key := fmt.Sprintf("%s%d", constants.RedisPrefixUserCache, id)

	payload, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_user_cache_get_failed: %w", err)
	}

	cached := &cachedUser{}
	if err := json.Unmarshal(payload, cached); err != nil {
		return nil, fmt.Errorf("redis_user_cache_unmarshal_failed: %w", err)
	}

	user := cached.User
	user.ID = id
	user.PasswordHash = cached.PasswordHash
	return &user, nil
}

// Delete invalidates the cached entry after a mutation.
func (cache *RedisUserCache) Delete(context context.Context, id int64) error {
	key := fmt.Sprintf("%s%d", constants.RedisPrefixUserCache, id)

	if err := cache.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_user_cache_delete_failed: %w", err)
	}

	return nil
}
