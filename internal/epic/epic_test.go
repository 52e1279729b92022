package epic

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/unideck/unideck/pkg/models"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func writeItem(t *testing.T, dir, appName, displayName string) {
	t.Helper()
	doc := `{"AppName": "` + appName + `", "DisplayName": "` + displayName + `", "InstallLocation": "/games/` + appName + `"}`
	if err := os.WriteFile(filepath.Join(dir, appName+".item"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write item manifest: %v", err)
	}
}

func initProvider(t *testing.T, manifests, library string) *Provider {
	t.Helper()
	p := New(nil)
	cfg := viper.New()
	if manifests != "" {
		cfg.Set("manifests", manifests)
	}
	if library != "" {
		cfg.Set("library", library)
	}
	if err := p.Init(cfg, testLogger()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return p
}

func TestProvider_Init_RequiresAConfiguredSource(t *testing.T) {
	p := New(nil)
	if err := p.Init(viper.New(), testLogger()); err == nil {
		t.Fatal("Init() expected error with neither manifests nor library set, got nil")
	}
}

func TestProvider_Entries_InstalledFromManifests(t *testing.T) {
	dir := t.TempDir()
	writeItem(t, dir, "Min", "Hades")

	p := initProvider(t, dir, "")
	entries, err := p.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Entries() returned %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.ID != "epic:min" || e.Title != "Hades" || !e.Installed || e.Store != models.StoreEpic {
		t.Errorf("entry = %+v, want installed Hades (epic:min) tagged epic", e)
	}
}

func TestProvider_Entries_MergesOwnedExport(t *testing.T) {
	dir := t.TempDir()
	writeItem(t, dir, "Min", "Hades")

	library := filepath.Join(t.TempDir(), "library.json")
	export := `[
		{"app_name": "Min", "title": "Hades"},
		{"app_name": "Calluna", "title": "Control"}
	]`
	if err := os.WriteFile(library, []byte(export), 0o644); err != nil {
		t.Fatalf("write library export: %v", err)
	}

	p := initProvider(t, dir, library)
	entries, err := p.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Entries() returned %d entries, want 2 (no duplicate for installed title)", len(entries))
	}

	byID := map[string]models.LibraryEntry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	if !byID["epic:min"].Installed {
		t.Error("epic:min should be installed (manifest present)")
	}
	if byID["epic:calluna"].Installed {
		t.Error("epic:calluna should not be installed (export only)")
	}
}

func TestProvider_Entries_SkipsMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	writeItem(t, dir, "Min", "Hades")
	if err := os.WriteFile(filepath.Join(dir, "junk.item"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	p := initProvider(t, dir, "")
	entries, err := p.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Entries() returned %d entries, want 1 (junk skipped)", len(entries))
	}
}

func TestProvider_Entries_MissingExportFileOK(t *testing.T) {
	dir := t.TempDir()
	writeItem(t, dir, "Min", "Hades")

	p := initProvider(t, dir, filepath.Join(t.TempDir(), "nope.json"))
	entries, err := p.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Entries() returned %d entries, want 1", len(entries))
	}
}
