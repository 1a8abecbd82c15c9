package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRegistry(t *testing.T) {
	registry := NewProviderRegistry()

	assert.False(t, registry.HasProvider(ProviderStatic))

	static := NewStaticSource(nil)
	registry.Register(ProviderStatic, func() (Source, error) {
		return static, nil
	})

	assert.True(t, registry.HasProvider(ProviderStatic))

	src, err := registry.Create(ProviderStatic)
	require.NoError(t, err)
	assert.Same(t, static, src.(*StaticSource))
}

func TestProviderRegistry_UnknownProvider(t *testing.T) {
	registry := NewProviderRegistry()

	_, err := registry.Create(ProviderGoogle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source registered")
}

func TestProviderRegistry_SupportedProviders(t *testing.T) {
	registry := NewProviderRegistry()
	registry.Register(ProviderStatic, func() (Source, error) { return nil, nil })
	registry.Register(ProviderCalDAV, func() (Source, error) { return nil, nil })

	assert.Equal(t, []Provider{ProviderCalDAV, ProviderStatic}, registry.SupportedProviders())
}
