package provider

// Event topics shared across unideck modules.
const (
	// TopicLibraryUpdated is published by a library source after a
	// successful refresh of its entries.
	TopicLibraryUpdated = "library.updated"

	// TopicPanelRefreshed is published by the panel after it has rebuilt
	// its unified snapshot.
	TopicPanelRefreshed = "panel.refreshed"
)

// LibraryUpdatedEvent is the payload for TopicLibraryUpdated events.
type LibraryUpdatedEvent struct {
	RefreshID string `json:"refresh_id"`
	Source    string `json:"source"`
	Entries   int    `json:"entries"`
}

// PanelRefreshedEvent is the payload for TopicPanelRefreshed events.
type PanelRefreshedEvent struct {
	Revision     uint64 `json:"revision"`
	Entries      int    `json:"entries"`
	Unattributed int    `json:"unattributed"`
}
