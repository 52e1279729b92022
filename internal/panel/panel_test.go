package panel

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/unideck/unideck/internal/testutil"
	"github.com/unideck/unideck/pkg/models"
	"github.com/unideck/unideck/pkg/provider"
)

// stubLibrary returns fixed entries or a fixed error.
type stubLibrary struct {
	entries []models.LibraryEntry
	err     error
}

func (s *stubLibrary) Entries(_ context.Context) ([]models.LibraryEntry, error) {
	return s.entries, s.err
}

// stubAttribution returns a fixed mapping or a fixed error.
type stubAttribution struct {
	mapping models.Attribution
	err     error
}

func (s *stubAttribution) Attribution(_ context.Context) (models.Attribution, error) {
	return s.mapping, s.err
}

// stubSources satisfies Sources with fixed providers.
type stubSources struct {
	libraries    []provider.LibrarySource
	attributions []provider.AttributionSource
}

func (s *stubSources) LibrarySources() []provider.LibrarySource         { return s.libraries }
func (s *stubSources) AttributionSources() []provider.AttributionSource { return s.attributions }

func newTestModule(t *testing.T, sources Sources) (*Module, *testutil.MockBus) {
	t.Helper()
	bus := testutil.NewMockBus()
	m := New(bus, sources)
	if err := m.Init(viper.New(), testutil.Logger()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return m, bus
}

func TestCollect_MergesSources(t *testing.T) {
	sources := &stubSources{
		libraries: []provider.LibrarySource{
			&stubLibrary{entries: []models.LibraryEntry{
				testutil.NewEntry(testutil.WithID("steam:10"), testutil.WithTitle("Celeste")),
			}},
			&stubLibrary{entries: []models.LibraryEntry{
				testutil.NewEntry(
					testutil.WithID("epic:min"),
					testutil.WithTitle("Hades"),
					testutil.WithStore(models.StoreUnknown),
				),
			}},
		},
		attributions: []provider.AttributionSource{
			&stubAttribution{mapping: models.Attribution{"epic:min": models.StoreEpic}},
		},
	}
	m, _ := newTestModule(t, sources)

	rev := m.Collect(context.Background())
	if rev != 1 {
		t.Errorf("revision = %d, want 1", rev)
	}

	got := m.view.Query(models.DefaultFilterState())
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	// Sorted by title: Celeste before Hades.
	if got[0].Title != "Celeste" || got[1].Title != "Hades" {
		t.Errorf("titles = [%s %s], want [Celeste Hades]", got[0].Title, got[1].Title)
	}
	if got[1].Store != models.StoreEpic {
		t.Errorf("Hades store = %q, want epic after attribution", got[1].Store)
	}
}

func TestCollect_SkipsFailingSource(t *testing.T) {
	sources := &stubSources{
		libraries: []provider.LibrarySource{
			&stubLibrary{err: errors.New("disk gone")},
			&stubLibrary{entries: []models.LibraryEntry{
				testutil.NewEntry(testutil.WithTitle("Raft")),
			}},
		},
		attributions: []provider.AttributionSource{
			&stubAttribution{err: errors.New("bad table")},
		},
	}
	m, _ := newTestModule(t, sources)

	m.Collect(context.Background())

	got := m.view.Query(models.DefaultFilterState())
	if len(got) != 1 || got[0].Title != "Raft" {
		t.Errorf("entries = %v, want single Raft entry", got)
	}
}

func TestCollect_PublishesRefreshEvent(t *testing.T) {
	sources := &stubSources{
		libraries: []provider.LibrarySource{
			&stubLibrary{entries: []models.LibraryEntry{
				testutil.NewEntry(testutil.WithStore(models.StoreUnknown)),
			}},
		},
	}
	m, bus := newTestModule(t, sources)

	rev := m.Collect(context.Background())

	events := bus.Events()
	if len(events) != 1 {
		t.Fatalf("published events = %d, want 1", len(events))
	}
	if events[0].Topic != provider.TopicPanelRefreshed {
		t.Errorf("topic = %q, want %q", events[0].Topic, provider.TopicPanelRefreshed)
	}
	payload, ok := events[0].Payload.(provider.PanelRefreshedEvent)
	if !ok {
		t.Fatalf("payload type = %T, want PanelRefreshedEvent", events[0].Payload)
	}
	if payload.Revision != rev {
		t.Errorf("payload revision = %d, want %d", payload.Revision, rev)
	}
	if payload.Unattributed != 1 {
		t.Errorf("payload unattributed = %d, want 1", payload.Unattributed)
	}
}

func TestStart_PerformsInitialCollection(t *testing.T) {
	sources := &stubSources{
		libraries: []provider.LibrarySource{
			&stubLibrary{entries: []models.LibraryEntry{
				testutil.NewEntry(testutil.WithTitle("Control")),
			}},
		},
	}
	m, _ := newTestModule(t, sources)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.Stop()

	if m.view.Len() != 1 {
		t.Errorf("view length after Start = %d, want 1", m.view.Len())
	}
}

func TestInit_RejectsInvalidLocale(t *testing.T) {
	config := viper.New()
	config.Set("locale", "not a locale!!")

	m := New(testutil.NewMockBus(), &stubSources{})
	if err := m.Init(config, testutil.Logger()); err == nil {
		t.Error("Init() should reject an unparseable locale")
	}
}
