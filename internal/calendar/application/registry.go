package application

import (
	"fmt"
	"sort"
	"sync"
)

// Provider identifies a calendar backend.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderCalDAV Provider = "caldav"
	ProviderICal   Provider = "ical"
	ProviderStatic Provider = "static"
)

// SourceFactory creates a Source for a provider.
type SourceFactory func() (Source, error)

// ProviderRegistry manages calendar provider implementations. Factories are
// registered at wiring time and resolved by provider name.
type ProviderRegistry struct {
	mu        sync.RWMutex
	factories map[Provider]SourceFactory
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		factories: make(map[Provider]SourceFactory),
	}
}

// Register registers a source factory for a provider.
func (r *ProviderRegistry) Register(provider Provider, factory SourceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[provider] = factory
}

// Create creates a source for the given provider.
func (r *ProviderRegistry) Create(provider Provider) (Source, error) {
	r.mu.RLock()
	factory, ok := r.factories[provider]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no source registered for provider: %s", provider)
	}
	return factory()
}

// HasProvider returns true if a provider is registered.
func (r *ProviderRegistry) HasProvider(provider Provider) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[provider]
	return ok
}

// SupportedProviders returns all registered provider names, sorted.
func (r *ProviderRegistry) SupportedProviders() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(r.factories))
	for p := range r.factories {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })
	return providers
}
