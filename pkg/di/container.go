package di

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/querycache"
	"github.com/goliatone/go-query-cache/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
)

// ErrNotInitialized is returned when a component needs the query cache before
// Init has run.
var ErrNotInitialized = errors.New("di: container is not initialized")

// Container owns the store, the configuration it was built from and the query
// cache created by the first successful Init.
type Container struct {
	config cache.Config
	store  cache.Store
	opts   []querycache.Option

	mu       sync.Mutex
	qc       *querycache.Cache
	registry querycache.ModelRegistry
}

// NewContainer creates a new DI container with the provided store configuration.
// opts are applied to the query cache when Init runs.
func NewContainer(config cache.Config, opts ...querycache.Option) (*Container, error) {
	store, err := cache.NewStore(config)
	if err != nil {
		return nil, errors.Wrap(err, "di: create store")
	}

	return &Container{
		config: config,
		store:  store,
		opts:   opts,
	}, nil
}

// NewContainerWithDefaults creates a new DI container using cache.DefaultConfig.
func NewContainerWithDefaults(opts ...querycache.Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// NewContainerFromEnv creates a new DI container configured from QUERYCACHE_*
// environment variables.
func NewContainerFromEnv(opts ...querycache.Option) (*Container, error) {
	config, err := cache.LoadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "di: load config")
	}
	return NewContainer(config, opts...)
}

// Store returns the singleton store instance.
func (c *Container) Store() cache.Store {
	return c.store
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// Cache returns the query cache, or nil before Init.
func (c *Container) Cache() *querycache.Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.qc
}

// Registry returns the handle accepted by the first successful Init.
func (c *Container) Registry() querycache.ModelRegistry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry
}

// Init performs the one-time setup of the query cache. handle must be able to
// hydrate entities, i.e. implement querycache.ModelRegistry; anything else
// fails with querycache.ErrIncompatibleORM. Later calls return the first cache
// with alreadyConfigured set and leave it untouched.
func (c *Container) Init(handle any) (qc *querycache.Cache, alreadyConfigured bool, err error) {
	registry, ok := handle.(querycache.ModelRegistry)
	if !ok || registry == nil {
		return nil, false, errors.Wrapf(querycache.ErrIncompatibleORM, "got %T", handle)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.qc != nil {
		return c.qc, true, nil
	}

	qc, err = querycache.New(c.store, registry, c.opts...)
	if err != nil {
		return nil, false, err
	}
	c.qc = qc
	c.registry = registry
	return qc, false, nil
}

// NewCachedRepository wraps base with the container's query cache.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewCachedRepository[User](container, baseUserRepository)
func NewCachedRepository[T any](container *Container, base repository.Repository[T]) (*repositorycache.CachedRepository[T], error) {
	qc := container.Cache()
	if qc == nil {
		return nil, ErrNotInitialized
	}
	return repositorycache.New(base, qc), nil
}
