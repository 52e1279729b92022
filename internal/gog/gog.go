// Package gog delivers library entries from a local GOG library database.
// GOG sync tools (gogdl/lgogdownloader companions) maintain a small SQLite
// file with one row per owned title:
//
//	CREATE TABLE games (
//	    id        TEXT PRIMARY KEY,
//	    title     TEXT NOT NULL,
//	    installed INTEGER NOT NULL DEFAULT 0
//	);
//
// The database belongs to the sync tool; this module opens it read-only and
// never writes.
package gog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/unideck/unideck/pkg/models"
	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Compile-time capability guard.
var _ provider.LibrarySource = (*Provider)(nil)

// Provider implements the GOG library source module.
type Provider struct {
	logger *zap.Logger
	bus    provider.EventBus

	path string
	db   *sql.DB
}

// New creates a new GOG provider instance. The bus may be nil in tests.
func New(bus provider.EventBus) *Provider {
	return &Provider{bus: bus}
}

func (p *Provider) Name() string    { return "gog" }
func (p *Provider) Version() string { return "0.1.0" }

func (p *Provider) Init(config *viper.Viper, logger *zap.Logger) error {
	p.logger = logger
	p.path = config.GetString("database")
	if p.path == "" {
		return fmt.Errorf("gog: database is required")
	}
	p.logger.Info("gog module initialized", zap.String("database", p.path))
	return nil
}

// Start opens the database read-only, performs the initial read, and
// announces it on the bus.
func (p *Provider) Start(ctx context.Context) error {
	db, err := sql.Open("sqlite", "file:"+p.path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("gog: open %q: %w", p.path, err)
	}

	// A single connection is plenty for an on-demand read-only source.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		// The sync tool may not have run yet; start degraded rather than
		// failing the whole panel.
		p.logger.Warn("gog database unavailable", zap.Error(err))
		return nil
	}
	p.db = db

	entries, err := p.Entries(ctx)
	if err != nil {
		p.logger.Warn("initial gog read failed", zap.Error(err))
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

func (p *Provider) Stop() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Entries reads all owned titles from the library database. Each call
// queries the database directly so callers always see current state.
func (p *Provider) Entries(ctx context.Context) ([]models.LibraryEntry, error) {
	if p.db == nil {
		return nil, nil
	}

	rows, err := p.db.QueryContext(ctx,
		"SELECT id, title, installed FROM games ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("gog: query games: %w", err)
	}
	defer rows.Close()

	var entries []models.LibraryEntry
	for rows.Next() {
		var id, title string
		var installed int
		if err := rows.Scan(&id, &title, &installed); err != nil {
			return nil, fmt.Errorf("gog: scan game row: %w", err)
		}
		entries = append(entries, models.LibraryEntry{
			ID:        "gog:" + id,
			Title:     title,
			Installed: installed != 0,
			Rating:    models.RatingUnrated,
			Store:     models.StoreGOG,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gog: iterate games: %w", err)
	}

	p.logger.Debug("gog read complete", zap.Int("entries", len(entries)))
	return entries, nil
}
