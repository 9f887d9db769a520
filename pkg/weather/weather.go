// Package weather fetches monthly solar and wind climatology for a
// deployment site.
package weather

import (
	"fmt"
	"sync"

	"github.com/levenlabs/go-lflag"
)

// Configured sets up the weather providers based on flags.
func Configured() *Map {
	m := NewMap()
	n := configuredNASAPower()
	m.SetProvider(NASAPowerName, n)

	name := lflag.String("weather-provider", NASAPowerName, "Name of the weather provider used to fill in project site data")
	lflag.Do(func() {
		if err := m.selectDefault(*name); err != nil {
			panic(fmt.Sprintf("weather provider validation failed: %v", err))
		}
	})
	return m
}

// validator is implemented by providers that check their configuration.
type validator interface {
	Validate() error
}

// selectDefault validates the named provider and makes it the default.
func (m *Map) selectDefault(name string) error {
	p, err := m.Provider(name)
	if err != nil {
		return err
	}
	if v, ok := p.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	m.SetDefault(name)
	return nil
}

// Map manages multiple weather providers.
type Map struct {
	mu          sync.Mutex
	providers   map[string]Provider
	defaultName string
}

// NewMap creates a new weather Map.
func NewMap() *Map {
	return &Map{
		providers: make(map[string]Provider),
	}
}

// Provider returns the provider for the given name. An empty name returns
// the configured default provider.
func (m *Map) Provider(name string) (Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		name = m.defaultName
	}
	if prov, ok := m.providers[name]; ok {
		return prov, nil
	}
	return nil, fmt.Errorf("unknown weather provider: %q", name)
}

// SetProvider sets the provider for the given name. The first provider set
// becomes the default until another is chosen with SetDefault.
func (m *Map) SetProvider(name string, provider Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = provider
	if m.defaultName == "" {
		m.defaultName = name
	}
}

// SetDefault changes the provider returned for an empty name.
func (m *Map) SetDefault(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = name
}
