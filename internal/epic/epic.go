// Package epic delivers library entries from a local Epic Games launcher
// installation. Installed titles come from the launcher's *.item manifest
// files; owned-but-uninstalled titles come from an optional library export
// (the JSON produced by legendary-compatible tooling).
package epic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/unideck/unideck/pkg/models"
	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"
)

// Compile-time capability guard.
var _ provider.LibrarySource = (*Provider)(nil)

// Provider implements the Epic library source module.
type Provider struct {
	logger *zap.Logger
	bus    provider.EventBus

	manifestsDir string // launcher's Manifests directory of *.item files
	libraryPath  string // optional owned-library JSON export
}

// New creates a new Epic provider instance. The bus may be nil in tests.
func New(bus provider.EventBus) *Provider {
	return &Provider{bus: bus}
}

func (p *Provider) Name() string    { return "epic" }
func (p *Provider) Version() string { return "0.1.0" }

func (p *Provider) Init(config *viper.Viper, logger *zap.Logger) error {
	p.logger = logger
	p.manifestsDir = config.GetString("manifests")
	p.libraryPath = config.GetString("library")
	if p.manifestsDir == "" && p.libraryPath == "" {
		return fmt.Errorf("epic: at least one of manifests or library is required")
	}
	p.logger.Info("epic module initialized",
		zap.String("manifests", p.manifestsDir),
		zap.String("library", p.libraryPath))
	return nil
}

// Start performs the initial library read and announces it on the bus.
func (p *Provider) Start(ctx context.Context) error {
	entries, err := p.Entries(ctx)
	if err != nil {
		p.logger.Warn("initial epic read failed", zap.Error(err))
		return nil
	}

	if p.bus != nil {
		p.bus.Publish(ctx, provider.Event{
			Topic:     provider.TopicLibraryUpdated,
			Source:    p.Name(),
			Timestamp: time.Now().UTC(),
			Payload: provider.LibraryUpdatedEvent{
				RefreshID: uuid.New().String(),
				Source:    p.Name(),
				Entries:   len(entries),
			},
		})
	}
	return nil
}

func (p *Provider) Stop() error { return nil }

// itemManifest is the subset of the launcher's *.item JSON we care about.
type itemManifest struct {
	AppName     string `json:"AppName"`
	DisplayName string `json:"DisplayName"`
}

// libraryExport is one owned title from the library export file.
type libraryExport struct {
	AppName string `json:"app_name"`
	Title   string `json:"title"`
}

// Entries merges installed manifests with the owned-library export. Titles
// present only in the export are reported as not installed. Each call
// re-reads disk so callers always see current state.
func (p *Provider) Entries(ctx context.Context) ([]models.LibraryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	installed, err := p.readManifests()
	if err != nil {
		return nil, err
	}

	owned, err := p.readLibraryExport()
	if err != nil {
		return nil, err
	}

	// Installed titles first, then owned titles not covered by a manifest.
	var entries []models.LibraryEntry
	seen := make(map[string]bool, len(installed))
	for _, m := range installed {
		id := epicID(m.AppName)
		seen[m.AppName] = true
		entries = append(entries, models.LibraryEntry{
			ID:        id,
			Title:     m.DisplayName,
			Installed: true,
			Rating:    models.RatingUnrated,
			Store:     models.StoreEpic,
		})
	}
	for _, o := range owned {
		if seen[o.AppName] {
			continue
		}
		entries = append(entries, models.LibraryEntry{
			ID:        epicID(o.AppName),
			Title:     o.Title,
			Installed: false,
			Rating:    models.RatingUnrated,
			Store:     models.StoreEpic,
		})
	}

	p.logger.Debug("epic read complete",
		zap.Int("installed", len(installed)),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// epicID builds the panel-wide entry ID for an Epic app name.
func epicID(appName string) string {
	return "epic:" + strings.ToLower(appName)
}

// readManifests parses every *.item file in the manifests directory.
func (p *Provider) readManifests() ([]itemManifest, error) {
	if p.manifestsDir == "" {
		return nil, nil
	}

	matches, err := filepath.Glob(filepath.Join(p.manifestsDir, "*.item"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var manifests []itemManifest
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			p.logger.Warn("skipping unreadable manifest", zap.String("path", path), zap.Error(err))
			continue
		}
		var m itemManifest
		if err := json.Unmarshal(data, &m); err != nil {
			p.logger.Warn("skipping malformed manifest", zap.String("path", path), zap.Error(err))
			continue
		}
		if m.AppName == "" {
			continue
		}
		if m.DisplayName == "" {
			m.DisplayName = m.AppName
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}

// readLibraryExport parses the owned-library JSON export. A missing file is
// fine; the user may only care about installed titles.
func (p *Provider) readLibraryExport() ([]libraryExport, error) {
	if p.libraryPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(p.libraryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("epic: read library export: %w", err)
	}

	var owned []libraryExport
	if err := json.Unmarshal(data, &owned); err != nil {
		return nil, fmt.Errorf("epic: parse library export %q: %w", p.libraryPath, err)
	}

	out := owned[:0]
	for _, o := range owned {
		if o.AppName == "" {
			continue
		}
		if o.Title == "" {
			o.Title = o.AppName
		}
		out = append(out, o)
	}
	return out, nil
}
