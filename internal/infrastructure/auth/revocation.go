package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList invalidates access tokens before they expire. Single
// tokens are revoked by JTI on logout; all of a user's tokens are revoked by
// recording a cut-off time, e.g. after a password change.
type RevocationList interface {
	// Revoke marks one token as revoked for ttl (its remaining lifetime)
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether a token's JTI was revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUser rejects every token of userID issued before cutoff
	RevokeUser(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) error

	// IsUserRevoked reports whether a token issued at issuedAt predates the
	// user's cut-off
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// RedisRevocationList keeps revocations in Redis so every API instance
// honors them
type RedisRevocationList struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisRevocationList creates a revocation list over an existing client
func NewRedisRevocationList(client redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{
		client:    client,
		keyPrefix: "tuition:revoked:",
	}
}

func (r *RedisRevocationList) jtiKey(jti string) string {
	return r.keyPrefix + "jti:" + jti
}

func (r *RedisRevocationList) userKey(userID string) string {
	return r.keyPrefix + "user:" + userID
}

// Revoke stores the JTI with the token's remaining TTL
func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired
	}
	if err := r.client.Set(ctx, r.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks the JTI key
func (r *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// RevokeUser stores cutoff as unix seconds
func (r *RedisRevocationList) RevokeUser(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.userKey(userID), cutoff.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// IsUserRevoked compares issuedAt with the stored cut-off
func (r *RedisRevocationList) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := r.client.Get(ctx, r.userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}

	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation cut-off: %w", err)
	}
	// Token iat has second precision, so a token minted in the same second
	// as the cut-off (the re-login after a password change) stays valid
	return issuedAt.Unix() < cutoff, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// MemoryRevocationList is the single-instance revocation list used when
// Redis is disabled
type MemoryRevocationList struct {
	mu      sync.Mutex
	tokens  map[string]time.Time // jti -> expiry
	cutoffs map[string]time.Time // userID -> cut-off
	now     func() time.Time
}

// NewMemoryRevocationList creates an empty in-process revocation list
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		tokens:  make(map[string]time.Time),
		cutoffs: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke records the JTI until ttl elapses
func (m *MemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[jti] = m.now().Add(ttl)
	return nil
}

// IsRevoked reports a live revocation and drops expired ones
func (m *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.tokens[jti]
	if !ok {
		return false, nil
	}
	if m.now().After(expiry) {
		delete(m.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RevokeUser records the cut-off; ttl is ignored because cut-offs are tiny
func (m *MemoryRevocationList) RevokeUser(_ context.Context, userID string, cutoff time.Time, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs[userID] = cutoff
	return nil
}

// IsUserRevoked compares at second precision, like the Redis list
func (m *MemoryRevocationList) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff, ok := m.cutoffs[userID]
	if !ok {
		return false, nil
	}
	return issuedAt.Unix() < cutoff.Unix(), nil
}

var _ RevocationList = (*MemoryRevocationList)(nil)
