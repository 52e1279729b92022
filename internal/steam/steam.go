// Package steam delivers library entries from a local Steam installation by
// reading steamapps manifests. No network access; the Steam client owns the
// data, we only observe it.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/unideck/unideck/pkg/models"
	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"
)

// Compile-time capability guard.
var _ provider.LibrarySource = (*Provider)(nil)

// Provider implements the Steam library source module.
type Provider struct {
	logger *zap.Logger
	bus    provider.EventBus

	root       string // Steam root, e.g. ~/.local/share/Steam
	compatPath string // optional JSON cache of appid -> compatibility rating
}

// New creates a new Steam provider instance. The bus may be nil in tests.
func New(bus provider.EventBus) *Provider {
	return &Provider{bus: bus}
}

func (p *Provider) Name() string    { return "steam" }
func (p *Provider) Version() string { return "0.1.0" }

func (p *Provider) Init(config *viper.Viper, logger *zap.Logger) error {
	p.logger = logger
	p.root = config.GetString("root")
	p.compatPath = config.GetString("compat_cache")
	if p.root == "" {
		return fmt.Errorf("steam: root is required")
	}
	p.logger.Info("steam module initialized", zap.String("root", p.root))
	return nil
}

// Start performs the initial library scan and announces it on the bus.
func (p *Provider) Start(ctx context.Context) error {
	entries, err := p.Entries(ctx)
	if err != nil {
		// A broken Steam install should not take the whole panel down;
		// the source is simply empty until the next refresh.
		p.logger.Warn("initial steam scan failed", zap.Error(err))
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

// Entries scans every Steam library folder for app manifests and returns
// one entry per installed title. Each call re-reads disk so callers always
// see current state.
func (p *Provider) Entries(ctx context.Context) ([]models.LibraryEntry, error) {
	folders, err := p.libraryFolders()
	if err != nil {
		return nil, err
	}

	ratings, err := p.compatRatings()
	if err != nil {
		p.logger.Warn("compatibility cache unreadable, ratings default to unrated", zap.Error(err))
		ratings = nil
	}

	var entries []models.LibraryEntry
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		apps, err := p.scanFolder(folder)
		if err != nil {
			p.logger.Warn("skipping unreadable library folder",
				zap.String("folder", folder), zap.Error(err))
			continue
		}

		for _, st := range apps {
			entries = append(entries, models.LibraryEntry{
				ID:        "steam:" + st.AppID,
				Title:     st.Name,
				Installed: st.StateFlags&stateFlagFullyInstalled != 0,
				Rating:    models.NormalizeCompatRating(ratings[st.AppID]),
				Store:     models.StoreSteam,
			})
		}
	}

	p.logger.Debug("steam scan complete", zap.Int("entries", len(entries)))
	return entries, nil
}

// libraryFolders returns all configured Steam library paths. The root's own
// steamapps is always included; libraryfolders.vdf adds the rest.
func (p *Provider) libraryFolders() ([]string, error) {
	folders := []string{p.root}

	f, err := os.Open(filepath.Join(p.root, "steamapps", "libraryfolders.vdf"))
	if err != nil {
		if os.IsNotExist(err) {
			return folders, nil
		}
		return nil, fmt.Errorf("steam: open libraryfolders.vdf: %w", err)
	}
	defer f.Close()

	extra, err := parseLibraryFolders(f)
	if err != nil {
		return nil, fmt.Errorf("steam: parse libraryfolders.vdf: %w", err)
	}

	seen := map[string]bool{filepath.Clean(p.root): true}
	for _, path := range extra {
		if clean := filepath.Clean(path); !seen[clean] {
			seen[clean] = true
			folders = append(folders, path)
		}
	}
	return folders, nil
}

// scanFolder parses every appmanifest_*.acf under one library folder.
func (p *Provider) scanFolder(folder string) ([]appState, error) {
	pattern := filepath.Join(folder, "steamapps", "appmanifest_*.acf")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var apps []appState
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			p.logger.Warn("skipping unreadable manifest", zap.String("path", path), zap.Error(err))
			continue
		}
		st, err := parseAppManifest(f)
		f.Close()
		if err != nil {
			p.logger.Warn("skipping malformed manifest", zap.String("path", path), zap.Error(err))
			continue
		}
		apps = append(apps, st)
	}
	return apps, nil
}

// compatRatings loads the optional appid -> rating JSON cache.
func (p *Provider) compatRatings() (map[string]string, error) {
	if p.compatPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(p.compatPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	ratings := make(map[string]string)
	if err := json.Unmarshal(data, &ratings); err != nil {
		return nil, fmt.Errorf("steam: parse compat cache %q: %w", p.compatPath, err)
	}
	return ratings, nil
}
