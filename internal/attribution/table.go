package attribution

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/unideck/unideck/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed attribution.yaml
var tableRawData []byte

// tableFile is the top-level structure of the attribution YAML.
type tableFile struct {
	Entries []tableEntry `yaml:"entries"`
}

type tableEntry struct {
	ID    string `yaml:"id"`
	Store string `yaml:"store"`
}

// Table provides lazy-loaded access to the embedded attribution data.
type Table struct {
	once    sync.Once
	mapping models.Attribution
	err     error
}

// NewTable creates a Table that will parse the embedded YAML on first access.
func NewTable() *Table {
	return &Table{}
}

// Mapping returns a copy of the embedded ID-to-store mapping.
func (t *Table) Mapping() (models.Attribution, error) {
	t.once.Do(t.load)
	if t.err != nil {
		return nil, t.err
	}
	cp := make(models.Attribution, len(t.mapping))
	for id, store := range t.mapping {
		cp[id] = store
	}
	return cp, nil
}

// load parses the embedded YAML attribution data.
func (t *Table) load() {
	t.mapping, t.err = parseTable(tableRawData)
	if t.err != nil {
		t.err = fmt.Errorf("attribution: parse embedded table: %w", t.err)
	}
}

// parseTable converts raw YAML into an Attribution mapping. Store values are
// normalized; unknown stores are dropped since they cannot correct anything.
func parseTable(data []byte) (models.Attribution, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	mapping := make(models.Attribution, len(f.Entries))
	for _, e := range f.Entries {
		if e.ID == "" {
			continue
		}
		store := models.NormalizeStoreTag(e.Store)
		if store == models.StoreUnknown {
			continue
		}
		mapping[e.ID] = store
	}
	return mapping, nil
}

// loadOverrides reads a user-maintained attribution YAML file. A missing
// file is not an error; the user simply has no overrides.
func loadOverrides(path string) (models.Attribution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("attribution: read overrides %q: %w", path, err)
	}

	mapping, err := parseTable(data)
	if err != nil {
		return nil, fmt.Errorf("attribution: parse overrides %q: %w", path, err)
	}
	return mapping, nil
}
