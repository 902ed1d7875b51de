// Package preferences persists per-visitor display settings: color theme and
// base font size.
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitaldent/clinic-site/internal/widgets"
)

// Preferences is the stored record. Missing or invalid values mean default.
type Preferences struct {
	Theme      widgets.Theme `json:"theme"`
	FontSizePx int           `json:"font_size_px"`
}

// Default returns the light theme at 16px.
func Default() Preferences {
	return Preferences{Theme: widgets.ThemeLight, FontSizePx: widgets.FontSizeDefault}
}

// Normalize replaces unknown or out-of-range values.
func (p Preferences) Normalize() Preferences {
	return Preferences{
		Theme:      widgets.ParseTheme(string(p.Theme)),
		FontSizePx: widgets.ClampFontSize(p.FontSizePx),
	}
}

// Store loads and saves preferences by visitor id.
type Store interface {
	Get(ctx context.Context, visitorID string) (Preferences, error)
	Save(ctx context.Context, visitorID string, prefs Preferences) error
}

const (
	keyPrefix  = "prefs:"
	defaultTTL = 365 * 24 * time.Hour
)

// RedisStore keeps preferences as JSON under prefs:<visitor>.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client, ttl: defaultTTL}
}

func (s *RedisStore) key(visitorID string) string {
	return keyPrefix + visitorID
}

// Get returns stored preferences, or defaults when none exist.
func (s *RedisStore) Get(ctx context.Context, visitorID string) (Preferences, error) {
	data, err := s.redis.Get(ctx, s.key(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("preferences: get: %w", err)
	}
	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Default(), nil
	}
	return prefs.Normalize(), nil
}

// Save stores prefs and refreshes the expiry.
func (s *RedisStore) Save(ctx context.Context, visitorID string, prefs Preferences) error {
	data, err := json.Marshal(prefs.Normalize())
	if err != nil {
		return fmt.Errorf("preferences: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(visitorID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("preferences: save: %w", err)
	}
	return nil
}

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]Preferences
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]Preferences)}
}

// Get returns stored preferences, or defaults.
func (s *MemoryStore) Get(ctx context.Context, visitorID string) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[visitorID]; ok {
		return p, nil
	}
	return Default(), nil
}

// Save stores prefs.
func (s *MemoryStore) Save(ctx context.Context, visitorID string, prefs Preferences) error {
	s.mu.Lock()
	s.prefs[visitorID] = prefs.Normalize()
	s.mu.Unlock()
	return nil
}
