package library

import (
	"sync"

	"github.com/unideck/unideck/pkg/models"
)

// View holds the panel's current annotated snapshot and memoizes the most
// recent pipeline result. The memo is keyed on the (snapshot revision,
// FilterState) pair: the pipeline is pure, so as long as neither changed the
// previous result is still correct. Safe for concurrent use.
type View struct {
	mu       sync.RWMutex
	pipeline *Pipeline

	entries  []models.AnnotatedEntry
	revision uint64

	memoState models.FilterState
	memoRev   uint64
	memoValid bool
	memoOut   []models.AnnotatedEntry
}

// NewView creates an empty view backed by the given pipeline.
func NewView(p *Pipeline) *View {
	return &View{pipeline: p}
}

// Replace swaps in a new annotated snapshot, invalidates the memo, and
// returns the new revision.
func (v *View) Replace(entries []models.AnnotatedEntry) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.entries = entries
	v.revision++
	v.memoValid = false
	return v.revision
}

// Revision returns the current snapshot revision. Zero means no snapshot
// has been installed yet.
func (v *View) Revision() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.revision
}

// Len returns the size of the current snapshot before filtering.
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

// Query evaluates the pipeline for the given state, reusing the previous
// result when both the snapshot and the state are unchanged. The returned
// slice is a copy owned by the caller.
func (v *View) Query(state models.FilterState) []models.AnnotatedEntry {
	v.mu.RLock()
	if v.memoValid && v.memoRev == v.revision && v.memoState == state {
		out := make([]models.AnnotatedEntry, len(v.memoOut))
		copy(out, v.memoOut)
		v.mu.RUnlock()
		viewCacheHits.Inc()
		return out
	}
	entries := v.entries
	rev := v.revision
	v.mu.RUnlock()

	result := v.pipeline.Apply(entries, state)

	v.mu.Lock()
	// A concurrent Replace may have landed while we computed; only memoize
	// results that still describe the current snapshot.
	if rev == v.revision {
		v.memoState = state
		v.memoRev = rev
		v.memoValid = true
		v.memoOut = result
	}
	v.mu.Unlock()

	out := make([]models.AnnotatedEntry, len(result))
	copy(out, result)
	return out
}
