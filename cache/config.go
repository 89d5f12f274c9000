package cache

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-query-cache/internal/cacheinfra"
)

// EnvPrefix namespaces the environment variables read by LoadConfig.
const EnvPrefix = "QUERYCACHE_"

// DisableWritesEnv names the toggle that, when set to the literal "true",
// turns every cache write into a no-op while reads keep being served.
const DisableWritesEnv = "DISABLE_DB_MEMCACHE"

// Config exposes store configuration options for consumers of the cache package.
type Config struct {
	Capacity           int           `env:"CAPACITY" envDefault:"10000"`
	NumShards          int           `env:"SHARDS" envDefault:"256"`
	TTL                time.Duration `env:"TTL" envDefault:"5m"`
	EvictionPercentage int           `env:"EVICTION_PERCENTAGE" envDefault:"10"`
	EvictionInterval   time.Duration `env:"EVICTION_INTERVAL"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// LoadConfig reads QUERYCACHE_* variables from the process environment,
// falling back to DefaultConfig values for unset ones.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(nil)
}

// LoadConfigFrom is LoadConfig over an explicit environment. A nil map reads
// the process environment.
func LoadConfigFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment: environ,
		Prefix:      EnvPrefix,
	}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type toggles struct {
	DisableWrites string `env:"DISABLE_DB_MEMCACHE"`
}

// WritesDisabled reports whether DISABLE_DB_MEMCACHE is set to "true".
// It is evaluated on every call so the toggle takes effect immediately.
func WritesDisabled() bool {
	var t toggles
	if err := env.Parse(&t); err != nil {
		return false
	}
	return t.DisableWrites == "true"
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewStore constructs the default in-memory Store using the provided configuration.
func NewStore(cfg Config) (Store, error) {
	store, err := cacheinfra.NewSturdycStore(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
