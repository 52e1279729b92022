// Package library implements the data-unification core of the panel: joining
// raw storefront entries with attribution data and evaluating the
// filter/sort pipeline over the unified set. Everything in this package is
// pure computation; callers may re-run it on every change.
package library

import (
	"github.com/unideck/unideck/pkg/models"
	"go.uber.org/zap"
)

// Enricher reconciles library entries against an attribution table.
// The zero value is usable; Logger is an optional diagnostic side channel
// and never influences the result.
type Enricher struct {
	Logger *zap.Logger
}

// Enrich joins each entry with the attribution lookup. An entry whose ID is
// present in attr gets its store tag replaced by the attributed value; all
// other fields pass through unchanged. Entries without attribution pass
// through as-is. The result is a new slice with the same length and order
// as the input.
func (en Enricher) Enrich(entries []models.LibraryEntry, attr models.Attribution) []models.AnnotatedEntry {
	out := make([]models.AnnotatedEntry, len(entries))
	for i, e := range entries {
		store := e.Store
		if tag, ok := attr[e.ID]; ok {
			store = tag
		}
		out[i] = e.Annotate(store)

		// Diagnostic only: an unattributed entry renders without a store
		// badge, which is worth noticing but is not an error.
		if store == "" || store == models.StoreUnknown {
			unattributedEntries.Inc()
			if en.Logger != nil {
				en.Logger.Debug("entry has no store attribution",
					zap.String("id", e.ID),
					zap.String("title", e.Title),
				)
			}
		}
	}
	return out
}

// CountUnattributed returns how many annotated entries still lack a known
// store tag. Used for the panel's status endpoint.
func CountUnattributed(entries []models.AnnotatedEntry) int {
	n := 0
	for i := range entries {
		if entries[i].Store == "" || entries[i].Store == models.StoreUnknown {
			n++
		}
	}
	return n
}
