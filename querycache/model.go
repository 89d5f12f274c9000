package querycache

import (
	"github.com/cockroachdb/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// Document is a plain result record keyed by field name.
type Document = map[string]any

// DefaultIDField is the identity field kept by projection filtering when a
// model does not name its own.
const DefaultIDField = "_id"

// Model turns plain documents into typed entities.
type Model interface {
	Name() string
	IDField() string
	Hydrate(doc Document) (any, error)
	HydrateAll(docs []Document) (any, error)
}

// ModelRegistry resolves models by the name carried on query descriptors.
// It is the hydration capability required at setup.
type ModelRegistry interface {
	Model(name string) (Model, bool)
}

// ModelOption customises a TypedModel.
type ModelOption func(*modelConfig)

type modelConfig struct {
	idField string
	tag     string
}

// WithIDField overrides the identity field name.
func WithIDField(field string) ModelOption {
	return func(c *modelConfig) {
		if field != "" {
			c.idField = field
		}
	}
}

// WithStructTag selects the struct tag used to map document fields onto T.
func WithStructTag(tag string) ModelOption {
	return func(c *modelConfig) {
		if tag != "" {
			c.tag = tag
		}
	}
}

// TypedModel hydrates documents into values of T by decoding them through
// msgpack, matching document keys against T's json tags by default.
type TypedModel[T any] struct {
	name string
	cfg  modelConfig
}

var _ Model = (*TypedModel[struct{}])(nil)

// NewModel creates a model named name whose entities are T values.
func NewModel[T any](name string, opts ...ModelOption) *TypedModel[T] {
	cfg := modelConfig{idField: DefaultIDField, tag: "json"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &TypedModel[T]{name: name, cfg: cfg}
}

func (m *TypedModel[T]) Name() string    { return m.name }
func (m *TypedModel[T]) IDField() string { return m.cfg.idField }

// Hydrate returns doc as a T.
func (m *TypedModel[T]) Hydrate(doc Document) (any, error) {
	return m.hydrate(doc)
}

// HydrateAll returns docs as a []T, preserving order.
func (m *TypedModel[T]) HydrateAll(docs []Document) (any, error) {
	out := make([]T, 0, len(docs))
	for i, doc := range docs {
		entity, err := m.hydrate(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "hydrate %s[%d]", m.name, i)
		}
		out = append(out, entity)
	}
	return out, nil
}

func (m *TypedModel[T]) hydrate(doc Document) (T, error) {
	var out T
	data, err := marshal(doc, m.cfg.tag)
	if err != nil {
		return out, errors.Wrapf(err, "hydrate %s", m.name)
	}
	if err := unmarshalInto(data, &out, m.cfg.tag); err != nil {
		return out, errors.Wrapf(err, "hydrate %s", m.name)
	}
	return out, nil
}

// Registry is a concurrent ModelRegistry.
type Registry struct {
	models *xsync.MapOf[string, Model]
}

var _ ModelRegistry = (*Registry)(nil)

// NewRegistry creates a registry holding models.
func NewRegistry(models ...Model) *Registry {
	r := &Registry{models: xsync.NewMapOf[string, Model]()}
	for _, m := range models {
		r.Register(m)
	}
	return r
}

// Register adds or replaces a model under its name.
func (r *Registry) Register(m Model) {
	if m == nil {
		return
	}
	r.models.Store(m.Name(), m)
}

// Model implements ModelRegistry.
func (r *Registry) Model(name string) (Model, bool) {
	return r.models.Load(name)
}

// Names lists registered model names in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.models.Size())
	r.models.Range(func(name string, _ Model) bool {
		names = append(names, name)
		return true
	})
	return names
}
