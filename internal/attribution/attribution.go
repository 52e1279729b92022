// Package attribution supplies the definitive ID-to-store mapping used to
// correct entries whose providers reported a missing or wrong origin store.
// The base table ships embedded in the binary; users can extend it with an
// overrides file.
package attribution

import (
	"context"

	"github.com/spf13/viper"
	"github.com/unideck/unideck/pkg/models"
	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"
)

// Compile-time capability guard.
var _ provider.AttributionSource = (*Provider)(nil)

// Provider implements the attribution source module.
type Provider struct {
	logger        *zap.Logger
	table         *Table
	overridesPath string
}

// New creates a new attribution provider instance.
func New() *Provider {
	return &Provider{table: NewTable()}
}

func (p *Provider) Name() string    { return "attribution" }
func (p *Provider) Version() string { return "0.1.0" }

func (p *Provider) Init(config *viper.Viper, logger *zap.Logger) error {
	p.logger = logger
	p.overridesPath = config.GetString("overrides")
	p.logger.Info("attribution module initialized",
		zap.String("overrides", p.overridesPath))
	return nil
}

func (p *Provider) Start(ctx context.Context) error { return nil }
func (p *Provider) Stop() error                     { return nil }

// Attribution returns the embedded table merged with the user's overrides.
// Override entries win on conflicting IDs.
func (p *Provider) Attribution(ctx context.Context) (models.Attribution, error) {
	mapping, err := p.table.Mapping()
	if err != nil {
		return nil, err
	}

	if p.overridesPath != "" {
		overrides, err := loadOverrides(p.overridesPath)
		if err != nil {
			return nil, err
		}
		for id, store := range overrides {
			mapping[id] = store
		}
		if len(overrides) > 0 {
			p.logger.Debug("merged attribution overrides", zap.Int("count", len(overrides)))
		}
	}

	return mapping, nil
}
