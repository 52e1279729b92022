package panel

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/unideck/unideck/internal/server"
	"github.com/unideck/unideck/pkg/models"
	"github.com/unideck/unideck/pkg/provider"
)

// ListOptions controls pagination of the library response. Pagination is
// applied after filtering and sorting, so pages are stable for a fixed
// snapshot and filter state.
type ListOptions struct {
	Limit  int // Max results per page (default 200, max 1000).
	Offset int // Number of results to skip.
}

// ListResult wraps one page of the filtered view.
type ListResult struct {
	Items    []models.AnnotatedEntry `json:"items"`
	Total    int                     `json:"total"`
	Revision uint64                  `json:"revision"`
}

// normalizeListOptions applies defaults and caps to list options.
func normalizeListOptions(opts ListOptions) ListOptions {
	if opts.Limit <= 0 {
		opts.Limit = 200
	}
	if opts.Limit > 1000 {
		opts.Limit = 1000
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}

// Routes implements provider.HTTPProvider.
func (m *Module) Routes() []provider.Route {
	return []provider.Route{
		{Method: "GET", Path: "/library", Handler: m.handleLibrary},
		{Method: "GET", Path: "/status", Handler: m.handleStatus},
		{Method: "POST", Path: "/refresh", Handler: m.handleRefresh},
		{Method: "GET", Path: "/ws", Handler: m.handleWS},
	}
}

// handleLibrary returns the filtered, sorted library view.
func (m *Module) handleLibrary(w http.ResponseWriter, r *http.Request) {
	state, problem := parseFilterState(r)
	if problem != nil {
		server.WriteProblem(w, *problem)
		return
	}

	opts := normalizeListOptions(ListOptions{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	})

	entries := m.view.Query(state)
	total := len(entries)

	// Page the already-ordered result.
	if opts.Offset >= len(entries) {
		entries = entries[:0]
	} else {
		entries = entries[opts.Offset:]
	}
	if len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	if entries == nil {
		entries = []models.AnnotatedEntry{}
	}

	writeJSON(w, http.StatusOK, ListResult{
		Items:    entries,
		Total:    total,
		Revision: m.view.Revision(),
	})
}

// handleStatus returns snapshot statistics for diagnostics.
func (m *Module) handleStatus(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	last := m.lastRefresh
	m.mu.Unlock()

	all := m.view.Query(models.DefaultFilterState())
	unattributed := 0
	for i := range all {
		if all[i].Store == models.StoreUnknown {
			unattributed++
		}
	}

	status := struct {
		Entries      int       `json:"entries"`
		Unattributed int       `json:"unattributed"`
		Revision     uint64    `json:"revision"`
		LastRefresh  time.Time `json:"last_refresh"`
	}{
		Entries:      m.view.Len(),
		Unattributed: unattributed,
		Revision:     m.view.Revision(),
		LastRefresh:  last,
	}
	writeJSON(w, http.StatusOK, status)
}

// handleRefresh re-collects all sources. Rate limited: a rescan touches
// every storefront's on-disk state.
func (m *Module) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !m.limiter.Allow() {
		server.RateLimited(w, "refresh already in progress or too frequent", r.URL.Path)
		return
	}

	revision := m.Collect(r.Context())
	writeJSON(w, http.StatusAccepted, map[string]any{"revision": revision})
}

// parseFilterState builds a FilterState from query parameters. Invalid enum
// values are caller errors and yield an RFC 7807 problem.
func parseFilterState(r *http.Request) (models.FilterState, *server.Problem) {
	q := r.URL.Query()

	category, err := models.ParseCategory(q.Get("category"))
	if err != nil {
		return models.FilterState{}, badFilterProblem(err, r.URL.Path)
	}
	store, err := models.ParseStoreFilter(q.Get("store"))
	if err != nil {
		return models.FilterState{}, badFilterProblem(err, r.URL.Path)
	}

	return models.FilterState{
		Category: category,
		Store:    store,
		Search:   q.Get("q"),
	}, nil
}

func badFilterProblem(err error, instance string) *server.Problem {
	return &server.Problem{
		Type:     server.ProblemTypeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   err.Error(),
		Instance: instance,
	}
}

// queryInt parses an integer query parameter, zero when absent or invalid.
func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
