package models

import "fmt"

// Category is the primary view mode of the library panel.
type Category string

const (
	CategoryAll         Category = "all"
	CategoryInstalled   Category = "installed"
	CategoryGreatOnDeck Category = "great-on-deck"
)

// StoreFilterAll disables store filtering in a FilterState.
const StoreFilterAll StoreTag = "all"

// FilterState parameterizes one evaluation of the filter/sort pipeline.
// It is a plain value owned by the caller; the pipeline never mutates it
// and never retains it beyond a single call.
type FilterState struct {
	Category Category `json:"category"`
	Store    StoreTag `json:"store"`
	Search   string   `json:"search"`
}

// DefaultFilterState is the state a fresh panel view starts with: everything
// visible, no search.
func DefaultFilterState() FilterState {
	return FilterState{Category: CategoryAll, Store: StoreFilterAll}
}

// ParseCategory validates a category query value. Empty input yields
// CategoryAll.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case "", CategoryAll:
		return CategoryAll, nil
	case CategoryInstalled, CategoryGreatOnDeck:
		return Category(s), nil
	default:
		return "", fmt.Errorf("invalid category %q", s)
	}
}

// ParseStoreFilter validates a store filter query value. Empty input yields
// StoreFilterAll. Unlike NormalizeStoreTag this rejects unrecognized values:
// a bad filter is a caller error, not a data-quality problem.
func ParseStoreFilter(s string) (StoreTag, error) {
	switch StoreTag(s) {
	case "", StoreFilterAll:
		return StoreFilterAll, nil
	case StoreSteam, StoreEpic, StoreGOG:
		return StoreTag(s), nil
	default:
		return "", fmt.Errorf("invalid store filter %q", s)
	}
}
