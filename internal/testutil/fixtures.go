package testutil

import (
	"github.com/google/uuid"

	"github.com/unideck/unideck/pkg/models"
)

// NewEntry returns a LibraryEntry with sensible defaults, suitable for test
// fixtures. Override individual fields after creation as needed.
func NewEntry(opts ...func(*models.LibraryEntry)) models.LibraryEntry {
	e := models.LibraryEntry{
		ID:        "steam:" + uuid.New().String(),
		Title:     "Test Game",
		Installed: true,
		Rating:    models.RatingVerified,
		Store:     models.StoreSteam,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WithID sets the entry ID.
func WithID(id string) func(*models.LibraryEntry) {
	return func(e *models.LibraryEntry) { e.ID = id }
}

// WithTitle sets the entry title.
func WithTitle(title string) func(*models.LibraryEntry) {
	return func(e *models.LibraryEntry) { e.Title = title }
}

// WithInstalled sets the installed flag.
func WithInstalled(installed bool) func(*models.LibraryEntry) {
	return func(e *models.LibraryEntry) { e.Installed = installed }
}

// WithRating sets the compatibility rating.
func WithRating(r models.CompatRating) func(*models.LibraryEntry) {
	return func(e *models.LibraryEntry) { e.Rating = r }
}

// WithStore sets the originating store.
func WithStore(s models.StoreTag) func(*models.LibraryEntry) {
	return func(e *models.LibraryEntry) { e.Store = s }
}
