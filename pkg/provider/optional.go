package provider

import (
	"context"

	"github.com/unideck/unideck/pkg/models"
)

// LibrarySource is implemented by providers that deliver library entries.
type LibrarySource interface {
	// Entries returns the provider's current view of the user's library.
	// The returned slice is owned by the caller.
	Entries(ctx context.Context) ([]models.LibraryEntry, error)
}

// AttributionSource is implemented by providers that deliver store
// attribution data.
type AttributionSource interface {
	// Attribution returns a mapping from entry ID to definitive store tag.
	Attribution(ctx context.Context) (models.Attribution, error)
}

// HTTPProvider is implemented by providers that expose REST API routes.
type HTTPProvider interface {
	Routes() []Route
}
