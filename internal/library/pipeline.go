package library

import (
	"sort"
	"strings"
	"sync"

	"github.com/unideck/unideck/pkg/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Pipeline evaluates the panel's filter/sort stages over an annotated entry
// set. Stages run in fixed order: category filter, store filter, search
// filter, then a stable title sort.
type Pipeline struct {
	mu       sync.Mutex // collators keep internal buffers between calls
	collator *collate.Collator
}

// NewPipeline creates a pipeline sorting titles with the given locale's
// collation rules. Use language.Und when no locale is configured.
func NewPipeline(tag language.Tag) *Pipeline {
	return &Pipeline{
		collator: collate.New(tag, collate.IgnoreCase),
	}
}

// Apply returns the entries surviving all three filters, ordered by display
// title. The input slice and its elements are never mutated; the result is
// always a fresh slice. Applying the same state to its own output returns
// an equal sequence.
func (p *Pipeline) Apply(entries []models.AnnotatedEntry, state models.FilterState) []models.AnnotatedEntry {
	pipelineApplications.Inc()

	out := make([]models.AnnotatedEntry, 0, len(entries))
	query := strings.ToLower(strings.TrimSpace(state.Search))

	for i := range entries {
		e := entries[i]
		if !categoryMatch(e, state.Category) {
			continue
		}
		if state.Store != models.StoreFilterAll && state.Store != "" && e.Store != state.Store {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Title), query) {
			continue
		}
		out = append(out, e)
	}

	// Stable so that equal titles keep their relative input order.
	p.mu.Lock()
	sort.SliceStable(out, func(a, b int) bool {
		return p.collator.CompareString(out[a].Title, out[b].Title) < 0
	})
	p.mu.Unlock()

	return out
}

// categoryMatch reports whether an entry survives the primary category
// filter.
func categoryMatch(e models.AnnotatedEntry, c models.Category) bool {
	switch c {
	case models.CategoryInstalled:
		return e.Installed
	case models.CategoryGreatOnDeck:
		return e.Rating == models.RatingPlayable || e.Rating == models.RatingVerified
	default:
		return true
	}
}
