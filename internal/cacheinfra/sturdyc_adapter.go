package cacheinfra

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// indefiniteRetention is the client level TTL. sturdyc only knows a single TTL
// per client, so per-entry expiry lives in the entry envelope and the client
// is configured to keep entries for as long as capacity allows.
const indefiniteRetention = 100 * 365 * 24 * time.Hour

// Config holds the configuration for the sturdyc store adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the default time-to-live applied when a write asks for the store
	// default (negative ttl). Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	// Default: 10 (evict 10% of entries)
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		EvictionInterval:   0, // Use default
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards and EvictionPercentage are passed directly to sturdyc.New.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
// Failures are reported as validation.Errors keyed by field name.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Nanosecond)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}

// entry wraps a stored value with its own expiry. A zero expiresAt never expires.
type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Option customises the store adapter.
type Option func(*sturdycStore)

// WithClock replaces the time source used for entry expiry.
func WithClock(now func() time.Time) Option {
	return func(s *sturdycStore) {
		if now != nil {
			s.now = now
		}
	}
}

// sturdycStore wraps a sturdyc client providing the cache.Store contract.
type sturdycStore struct {
	client     *sturdyc.Client[entry]
	defaultTTL time.Duration
	now        func() time.Time
}

// NewSturdycStore creates a new sturdyc backed store.
// It validates the configuration and initializes a sturdyc client with the provided settings.
func NewSturdycStore(cfg Config, opts ...Option) (*sturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[entry](
		cfg.Capacity,
		cfg.NumShards,
		indefiniteRetention,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	s := &sturdycStore{
		client:     client,
		defaultTTL: cfg.TTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get returns the stored value for key. Expired entries are removed and
// reported as absent.
func (s *sturdycStore) Get(_ context.Context, key string) (any, bool, error) {
	e, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(s.now()) {
		s.client.Delete(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value under key. ttl == 0 never expires, ttl < 0 uses the
// configured default and ttl > 0 expires ttl after now. Overwrites reset expiry.
func (s *sturdycStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl < 0 {
		ttl = s.defaultTTL
	}

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.client.Set(key, e)
	return nil
}

// Delete removes a single entry from the store.
func (s *sturdycStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Clear removes every entry from the store.
func (s *sturdycStore) Clear(_ context.Context) error {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	return nil
}

// Len returns the number of entries currently held, expired or not.
func (s *sturdycStore) Len() int {
	return s.client.Size()
}
