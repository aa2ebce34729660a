package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
)

// Registry hands out one Client per media kind, building it lazily from
// configuration on first use.
type Registry struct {
	mu        sync.Mutex
	factories map[media.Kind]Factory
	configs   map[media.Kind]config.ProviderConfig
	clients   map[media.Kind]Client
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[media.Kind]Factory),
		configs:   make(map[media.Kind]config.ProviderConfig),
		clients:   make(map[media.Kind]Client),
	}
}

// Register installs the factory used to build the client for kind.
func (r *Registry) Register(kind media.Kind, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("provider for %s already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Configure stores the settings for kind and drops any client already built
// from older settings.
func (r *Registry) Configure(kind media.Kind, cfg config.ProviderConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[kind] = cfg
	delete(r.clients, kind)
}

// ConfigureAll stores the settings for every kind found in cfg.
func (r *Registry) ConfigureAll(cfg *config.Config) {
	for _, kind := range media.Kinds {
		if pc, ok := cfg.Provider(kind); ok {
			r.Configure(kind, pc)
		}
	}
}

// Resolve returns the client for kind, constructing it on first use.
func (r *Registry) Resolve(kind media.Kind) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[kind]; ok {
		return client, nil
	}

	factory, ok := r.factories[kind]
	if !ok {
		return nil, &ConfigurationError{Kind: kind, Reason: "no provider registered"}
	}

	cfg, ok := r.configs[kind]
	if !ok || !cfg.Configured() {
		return nil, &ConfigurationError{Kind: kind, Reason: "url and api key are required"}
	}

	client, err := factory(cfg)
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Reason: err.Error()}
	}

	r.clients[kind] = client
	return client, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []media.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]media.Kind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
