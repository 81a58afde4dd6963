// Package schema holds the entity registry: runtime-defined entity types,
// their fields and relationships, and the instances created from them.
package schema

import (
	"go.uber.org/zap"
)

// Listener observes successful registry mutations. Listeners are invoked
// after the mutation is applied, in registration order.
type Listener interface {
	TypeRegistered(t *EntityType)
	FieldAdded(t *EntityType, f *Field)
	RelationshipAdded(r *Relationship)
}

// Registry is the in-memory store of entity types and instances.
//
// A Registry is not safe for concurrent use; callers sharing one across
// goroutines must serialize access themselves.
type Registry struct {
	types     map[string]*EntityType
	typeOrder []*EntityType
	instances map[string]*Instance
	relations []*Relationship
	// tables maps each table name in use to the type or relationship using it.
	tables map[string]string

	naming    NamingStrategy
	ids       IDGenerator
	listeners []Listener
	logger    *zap.SugaredLogger

	cacheSize int
}

type Option func(*Registry)

// WithNamingStrategy sets the strategy used to derive table and column names.
func WithNamingStrategy(strategy NamingStrategy) Option {
	return func(r *Registry) { r.naming = strategy }
}

// WithIDGenerator sets the generator for instance ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *Registry) { r.ids = gen }
}

// WithLogger sets the logger mutations are reported to.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithListener subscribes l to registry mutations.
func WithListener(l Listener) Option {
	return func(r *Registry) { r.listeners = append(r.listeners, l) }
}

// WithCacheSize sets the LRU size for resolved table and column names.
// Zero disables the cache.
func WithCacheSize(size int) Option {
	return func(r *Registry) { r.cacheSize = size }
}

// New creates an empty registry.
func New(options ...Option) *Registry {
	r := &Registry{
		types:     make(map[string]*EntityType, 16),
		instances: make(map[string]*Instance, 64),
		tables:    make(map[string]string, 16),
		naming:    DefaultNamingStrategy(),
		logger:    zap.NewNop().Sugar(),
		cacheSize: 256,
	}

	for _, opt := range options {
		opt(r)
	}

	if r.ids == nil {
		r.ids = NewULIDGenerator()
	}
	r.naming = newCachedNaming(r.naming, r.cacheSize)

	return r
}
