package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/alfresco-fixtures/internal/config"
	"github.com/tonimelisma/alfresco-fixtures/internal/ledger"
)

const (
	legacyPrefix = "/alfresco/service/api/"
	publicPrefix = "/alfresco/api/-default-/public/alfresco/versions/1/"
)

// fakeServer is a minimal Alfresco stand-in covering sites and node deletes.
type fakeServer struct {
	mu       sync.Mutex
	sites    map[string]bool
	nodes    map[string]bool
	failures map[string]int // "METHOD path-suffix" -> forced status
	requests []string
	srv      *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	f := &fakeServer{
		sites:    make(map[string]bool),
		nodes:    make(map[string]bool),
		failures: make(map[string]int),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch {
	case strings.HasPrefix(r.URL.Path, legacyPrefix):
		f.handleLegacy(w, r, strings.TrimPrefix(r.URL.Path, legacyPrefix))
	case strings.HasPrefix(r.URL.Path, publicPrefix):
		f.handlePublic(w, r, strings.TrimPrefix(r.URL.Path, publicPrefix))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeServer) handleLegacy(w http.ResponseWriter, r *http.Request, path string) {
	if path == "login" {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"ticket": "TICKET_1"}})
		return
	}

	if r.URL.Query().Get("alf_ticket") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if path == "sites" {
		ids := make([]string, 0, len(f.sites))
		for id := range f.sites {
			ids = append(ids, id)
		}

		sort.Strings(ids)

		out := make([]map[string]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, map[string]string{"shortName": id, "title": id})
		}

		writeJSON(w, http.StatusOK, out)

		return
	}

	if id, ok := strings.CutPrefix(path, "sites/"); ok && f.sites[id] {
		writeJSON(w, http.StatusOK, map[string]string{"shortName": id})
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (f *fakeServer) handlePublic(w http.ResponseWriter, r *http.Request, path string) {
	if _, _, ok := r.BasicAuth(); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if code, ok := f.failures[r.Method+" "+path]; ok {
		w.WriteHeader(code)
		return
	}

	switch {
	case r.Method == http.MethodPost && path == "sites":
		var req struct {
			ID         string `json:"id"`
			Visibility string `json:"visibility"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if f.sites[req.ID] {
			w.WriteHeader(http.StatusConflict)
			return
		}

		f.sites[req.ID] = true

		writeJSON(w, http.StatusCreated, map[string]any{"entry": map[string]string{
			"id": req.ID, "guid": "guid-" + req.ID, "title": req.ID, "visibility": req.Visibility,
		}})
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "sites/"):
		f.deleteFrom(w, f.sites, strings.TrimPrefix(path, "sites/"))
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "nodes/"):
		f.deleteFrom(w, f.nodes, strings.TrimPrefix(path, "nodes/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeServer) deleteFrom(w http.ResponseWriter, m map[string]bool, id string) {
	if !m[id] {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	delete(m, id)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeServer) hasSite(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sites[id]
}

func (f *fakeServer) addSite(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sites[id] = true
}

func (f *fakeServer) addNode(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nodes[id] = true
}

func (f *fakeServer) fail(method, path string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures[method+" "+path] = code
}

func (f *fakeServer) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// cliEnv points the CLI at srv through the environment and returns the
// ledger path tests pass with --ledger. The config file does not exist.
func cliEnv(t *testing.T, f *fakeServer) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv(config.EnvConfig, filepath.Join(dir, "missing.toml"))
	t.Setenv(config.EnvServerURL, f.srv.URL)
	t.Setenv(config.EnvUser, "admin")
	t.Setenv(config.EnvPassword, "secret")

	return filepath.Join(dir, "fixtures.db")
}

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Cleanup(func() { resolvedCfg = nil })

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--quiet"}, args...))

	err := cmd.Execute()

	return out.String(), err
}

// openLedger opens the ledger at path for inspection.
func openLedger(t *testing.T, path string) *ledger.Ledger {
	t.Helper()

	l, err := ledger.Open(context.Background(), path, nil)
	require.NoError(t, err)

	t.Cleanup(func() { l.Close() })

	return l
}
