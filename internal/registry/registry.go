// Package registry manages the lifecycle of all registered providers.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/viper"
	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"
)

// Registry manages the lifecycle of all registered providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]provider.Provider
	order     []string
	logger    *zap.Logger
}

// New creates a new provider registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		providers: make(map[string]provider.Provider),
		logger:    logger,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p provider.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider name must not be empty")
	}
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}

	r.providers[name] = p
	r.order = append(r.order, name)
	r.logger.Info("provider registered", zap.String("name", name), zap.String("version", p.Version()))
	return nil
}

// InitAll initializes all registered providers with their configuration.
// Providers with providers.<name>.enabled=false are skipped and excluded
// from Start/Stop and the capability accessors.
func (r *Registry) InitAll(config *viper.Viper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	enabled := r.order[:0:0]
	for _, name := range r.order {
		p := r.providers[name]

		if !config.GetBool("providers." + name + ".enabled") {
			r.logger.Info("provider disabled, skipping", zap.String("name", name))
			delete(r.providers, name)
			continue
		}

		providerConfig := config.Sub("providers." + name)
		if providerConfig == nil {
			providerConfig = viper.New()
		}

		r.logger.Info("initializing provider", zap.String("name", name))
		if err := p.Init(providerConfig, r.logger.Named(name)); err != nil {
			return fmt.Errorf("failed to initialize provider %q: %w", name, err)
		}
		enabled = append(enabled, name)
	}
	r.order = enabled
	return nil
}

// StartAll starts all initialized providers.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		p := r.providers[name]
		r.logger.Info("starting provider", zap.String("name", name))
		if err := p.Start(ctx); err != nil {
			return fmt.Errorf("failed to start provider %q: %w", name, err)
		}
	}
	return nil
}

// StopAll stops all providers in reverse order.
func (r *Registry) StopAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		p := r.providers[name]
		r.logger.Info("stopping provider", zap.String("name", name))
		if err := p.Stop(); err != nil {
			r.logger.Error("failed to stop provider", zap.String("name", name), zap.Error(err))
		}
	}
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (provider.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// All returns all registered providers in registration order.
func (r *Registry) All() []provider.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]provider.Provider, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.providers[name])
	}
	return result
}

// LibrarySources returns all providers that deliver library entries,
// in registration order.
func (r *Registry) LibrarySources() []provider.LibrarySource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []provider.LibrarySource
	for _, name := range r.order {
		if src, ok := r.providers[name].(provider.LibrarySource); ok {
			result = append(result, src)
		}
	}
	return result
}

// AttributionSources returns all providers that deliver attribution data,
// in registration order.
func (r *Registry) AttributionSources() []provider.AttributionSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []provider.AttributionSource
	for _, name := range r.order {
		if src, ok := r.providers[name].(provider.AttributionSource); ok {
			result = append(result, src)
		}
	}
	return result
}

// AllRoutes returns all routes from providers implementing HTTPProvider,
// keyed by provider name.
func (r *Registry) AllRoutes() map[string][]provider.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make(map[string][]provider.Route)
	for _, name := range r.order {
		if hp, ok := r.providers[name].(provider.HTTPProvider); ok {
			if pr := hp.Routes(); len(pr) > 0 {
				routes[name] = pr
			}
		}
	}
	return routes
}
