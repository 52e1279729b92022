// Package panel exposes the unified library view to the host UI. It collects
// entries from every registered library source, runs them through the
// enrichment and filter/sort core, and serves the result over HTTP and
// WebSocket.
package panel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/unideck/unideck/internal/library"
	"github.com/unideck/unideck/pkg/models"
	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

// Compile-time capability guard.
var _ provider.HTTPProvider = (*Module)(nil)

// Sources yields the other modules the panel consumes. *registry.Registry
// satisfies it.
type Sources interface {
	LibrarySources() []provider.LibrarySource
	AttributionSources() []provider.AttributionSource
}

// Module implements the panel provider.
type Module struct {
	logger  *zap.Logger
	bus     provider.EventBus
	sources Sources

	enricher library.Enricher
	view     *library.View
	limiter  *rate.Limiter
	now      func() time.Time

	mu          sync.Mutex
	lastRefresh time.Time
	unsub       func()
}

// New creates a new panel module. The bus distributes refresh notifications;
// sources supplies the library and attribution providers to collect from.
func New(bus provider.EventBus, sources Sources) *Module {
	return &Module{
		bus:     bus,
		sources: sources,
		now:     time.Now,
	}
}

func (m *Module) Name() string    { return "panel" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.logger = logger
	m.enricher = library.Enricher{Logger: logger}

	locale := config.GetString("locale")
	tag := language.Und
	if locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("panel: invalid locale %q: %w", locale, err)
		}
		tag = parsed
	}
	m.view = library.NewView(library.NewPipeline(tag))

	// Manual refreshes rescan every storefront; keep them off the hot path.
	interval := config.GetDuration("refresh_min_interval")
	if interval <= 0 {
		interval = 5 * time.Second
	}
	m.limiter = rate.NewLimiter(rate.Every(interval), 1)

	m.logger.Info("panel module initialized", zap.String("locale", locale))
	return nil
}

// Start performs the initial collection and subscribes to source updates so
// the snapshot tracks provider changes.
func (m *Module) Start(ctx context.Context) error {
	if m.bus != nil {
		m.unsub = m.bus.Subscribe(provider.TopicLibraryUpdated, func(ctx context.Context, e provider.Event) {
			m.logger.Debug("library source updated, recollecting", zap.String("source", e.Source))
			m.Collect(ctx)
		})
	}

	m.Collect(ctx)
	return nil
}

func (m *Module) Stop() error {
	if m.unsub != nil {
		m.unsub()
	}
	return nil
}

// Collect rebuilds the unified snapshot: gather entries from every library
// source, merge attribution tables, enrich, and swap the view. A failing
// source contributes nothing this round but does not abort the collection.
func (m *Module) Collect(ctx context.Context) uint64 {
	var raw []models.LibraryEntry
	for _, src := range m.sources.LibrarySources() {
		entries, err := src.Entries(ctx)
		if err != nil {
			m.logger.Warn("library source failed, skipping this round", zap.Error(err))
			continue
		}
		raw = append(raw, entries...)
	}

	attr := make(models.Attribution)
	for _, src := range m.sources.AttributionSources() {
		mapping, err := src.Attribution(ctx)
		if err != nil {
			m.logger.Warn("attribution source failed, skipping this round", zap.Error(err))
			continue
		}
		// Registration order decides conflicts: later sources win.
		for id, store := range mapping {
			attr[id] = store
		}
	}

	annotated := m.enricher.Enrich(raw, attr)
	revision := m.view.Replace(annotated)
	snapshotRefreshes.Inc()

	m.mu.Lock()
	m.lastRefresh = m.now()
	m.mu.Unlock()

	m.logger.Info("panel snapshot rebuilt",
		zap.Uint64("revision", revision),
		zap.Int("entries", len(annotated)))

	if m.bus != nil {
		m.bus.PublishAsync(ctx, provider.Event{
			Topic:     provider.TopicPanelRefreshed,
			Source:    m.Name(),
			Timestamp: m.now().UTC(),
			Payload: provider.PanelRefreshedEvent{
				Revision:     revision,
				Entries:      len(annotated),
				Unattributed: library.CountUnattributed(annotated),
			},
		})
	}
	return revision
}
