package models

// StoreTag identifies the storefront a library entry originated from.
type StoreTag string

const (
	StoreSteam   StoreTag = "steam"
	StoreEpic    StoreTag = "epic"
	StoreGOG     StoreTag = "gog"
	StoreUnknown StoreTag = "unknown"
)

// NormalizeStoreTag maps arbitrary provider input to a valid StoreTag.
// Empty or unrecognized values become StoreUnknown so the pipeline only
// ever sees valid enum values.
func NormalizeStoreTag(s string) StoreTag {
	switch StoreTag(s) {
	case StoreSteam, StoreEpic, StoreGOG:
		return StoreTag(s)
	default:
		return StoreUnknown
	}
}

// CompatRating is a coarse classification of how well a title runs on the
// target device class.
type CompatRating string

const (
	RatingUnrated     CompatRating = "unrated"
	RatingUnsupported CompatRating = "unsupported"
	RatingPlayable    CompatRating = "playable"
	RatingVerified    CompatRating = "verified"
)

// NormalizeCompatRating maps arbitrary provider input to a valid CompatRating.
func NormalizeCompatRating(s string) CompatRating {
	switch CompatRating(s) {
	case RatingUnsupported, RatingPlayable, RatingVerified:
		return CompatRating(s)
	default:
		return RatingUnrated
	}
}

// LibraryEntry is a single game record as delivered by a storefront provider.
// ID is the join key and is unique per title across all stores
// (providers prefix it with their store name, e.g. "steam:620").
type LibraryEntry struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Installed bool         `json:"installed"`
	Rating    CompatRating `json:"rating"`
	Store     StoreTag     `json:"store"`
}

// Attribution maps entry IDs to their definitive origin store. It corrects
// or supplies store tags that providers left missing or wrong.
type Attribution map[string]StoreTag

// AnnotatedEntry is a LibraryEntry whose store tag has been reconciled
// against an Attribution table. The distinct type records that enrichment
// already happened; the field set is identical.
type AnnotatedEntry struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Installed bool         `json:"installed"`
	Rating    CompatRating `json:"rating"`
	Store     StoreTag     `json:"store"`
}

// Annotate returns the entry as an AnnotatedEntry carrying the given store tag.
func (e LibraryEntry) Annotate(store StoreTag) AnnotatedEntry {
	return AnnotatedEntry{
		ID:        e.ID,
		Title:     e.Title,
		Installed: e.Installed,
		Rating:    e.Rating,
		Store:     store,
	}
}
