// Package session converts a located share-link token into durable,
// verified client state: a token cookie plus a server-side cache entry
// keyed by an opaque browsing-session ID.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// IDCookieName is the cookie holding the opaque browsing-session ID
	IDCookieName = "sid"
	// DefaultTTL bounds both the token cookie and the cache entry
	DefaultTTL = 24 * time.Hour

	redisKeyPrefix = "session:token:"
)

// Store caches the last verified raw token for a browsing session.
// Only the Resolver writes to it; other components just read.
type Store interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Put(ctx context.Context, sessionID, tokenString string) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore is the production Store backed by Redis with a bounded TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (string, error) {
	value, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID, tokenString string) error {
	return s.client.Set(ctx, redisKeyPrefix+sessionID, tokenString, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, redisKeyPrefix+sessionID).Err()
}

// MemoryStore is an in-process Store for tests and single-node setups
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", nil
	}
	return entry.token, nil
}

func (s *MemoryStore) Put(ctx context.Context, sessionID, tokenString string) error {
	s.mu.Lock()
	s.entries[sessionID] = memoryEntry{token: tokenString, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

// EnsureID returns the request's browsing-session ID, minting one and
// setting its cookie when the client does not carry one yet.
func EnsureID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(IDCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     IDCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(DefaultTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// SessionID returns the browsing-session ID carried by the request, if any
func SessionID(r *http.Request) string {
	cookie, err := r.Cookie(IDCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
