package alfresco

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	fakeUser     = "admin"
	fakePassword = "secret"

	fakeLegacyPrefix = "/alfresco/service/api/"
	fakePublicPrefix = "/alfresco/api/"
	fakePublicMiddle = "/public/alfresco/versions/1/"
)

var adminCreds = Credentials{Username: fakeUser, Password: fakePassword}

type fakeSite struct {
	id         string
	guid       string
	network    string
	title      string
	visibility string
	libID      string
}

type fakeNode struct {
	id      string
	name    string
	parent  string
	folder  bool
	mime    string
	content []byte
}

// fakeAlfresco is an in-memory Alfresco that speaks just enough of the
// legacy and versioned REST APIs for the client. Every request is recorded.
type fakeAlfresco struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	sites     map[string]*fakeSite
	nodes     map[string]*fakeNode
	favorites map[string]map[string]bool
	tickets   map[string]bool
	requests  []string
	logins    int
	nextID    int
	pageSize  int

	// override, when set, may handle a request before the fake does.
	override func(w http.ResponseWriter, r *http.Request) bool
}

func newFakeAlfresco(t *testing.T) *fakeAlfresco {
	t.Helper()

	f := &fakeAlfresco{
		t:         t,
		sites:     make(map[string]*fakeSite),
		nodes:     make(map[string]*fakeNode),
		favorites: make(map[string]map[string]bool),
		tickets:   make(map[string]bool),
	}

	f.srv = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.srv.Close)

	return f
}

// client returns a Client pointed at the fake with a discarding logger.
func (f *fakeAlfresco) client(opts ...Option) *Client {
	return NewClient(f.srv.URL, f.srv.Client(), slog.New(slog.DiscardHandler), opts...)
}

func (f *fakeAlfresco) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%04d", prefix, f.nextID)
}

// addSite seeds a site with an empty document library.
func (f *fakeAlfresco) addSite(id string) *fakeSite {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.addSiteLocked(id, defaultNetwork, string(VisibilityPublic))
}

func (f *fakeAlfresco) addSiteLocked(id, network, visibility string) *fakeSite {
	lib := &fakeNode{id: f.newID("lib"), name: "documentLibrary", folder: true}
	f.nodes[lib.id] = lib

	s := &fakeSite{
		id:         id,
		guid:       f.newID("guid"),
		network:    network,
		title:      id,
		visibility: visibility,
		libID:      lib.id,
	}
	f.sites[id] = s

	return s
}

// addNode seeds a folder or document under parent (a node id).
func (f *fakeAlfresco) addNode(parent, name string, folder bool, content string) *fakeNode {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := &fakeNode{id: f.newID("node"), name: name, parent: parent, folder: folder}
	if !folder {
		n.mime = "text/plain"
		n.content = []byte(content)
	}

	f.nodes[n.id] = n

	return n
}

func (f *fakeAlfresco) node(id string) *fakeNode {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.nodes[id]
}

func (f *fakeAlfresco) nodeNamed(name string) *fakeNode {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.nodes {
		if n.name == name {
			return n
		}
	}

	return nil
}

func (f *fakeAlfresco) isFavorite(user, guid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.favorites[user][guid]
}

// requestLog returns a copy of the recorded "METHOD path" lines.
func (f *fakeAlfresco) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.requests...)
}

// count returns how many recorded requests used method and contain fragment.
func (f *fakeAlfresco) count(method, fragment string) int {
	n := 0

	for _, r := range f.requestLog() {
		if strings.HasPrefix(r, method+" ") && strings.Contains(r, fragment) {
			n++
		}
	}

	return n
}

func (f *fakeAlfresco) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.logins
}

func (f *fakeAlfresco) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	override := f.override
	f.mu.Unlock()

	if override != nil && override(w, r) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	raw := r.URL.EscapedPath()

	switch {
	case strings.HasPrefix(raw, fakeLegacyPrefix):
		f.serveLegacy(w, r, splitSegments(f.t, strings.TrimPrefix(raw, fakeLegacyPrefix)))
	case strings.HasPrefix(raw, fakePublicPrefix):
		rest := strings.TrimPrefix(raw, fakePublicPrefix)

		i := strings.Index(rest, fakePublicMiddle)
		if i < 0 {
			http.NotFound(w, r)
			return
		}

		network, err := url.PathUnescape(rest[:i])
		require.NoError(f.t, err)

		f.servePublic(w, r, network, splitSegments(f.t, rest[i+len(fakePublicMiddle):]))
	default:
		http.NotFound(w, r)
	}
}

func splitSegments(t *testing.T, escaped string) []string {
	parts := strings.Split(strings.Trim(escaped, "/"), "/")
	for i, p := range parts {
		u, err := url.PathUnescape(p)
		require.NoError(t, err)
		parts[i] = u
	}

	return parts
}

func (f *fakeAlfresco) ticketOK(r *http.Request) bool {
	return f.tickets[r.URL.Query().Get("alf_ticket")]
}

func (f *fakeAlfresco) basicOK(r *http.Request) bool {
	u, p, ok := r.BasicAuth()
	return ok && u == fakeUser && p == fakePassword
}

func (f *fakeAlfresco) serveLegacy(w http.ResponseWriter, r *http.Request, seg []string) {
	if seg[0] == "login" {
		q := r.URL.Query()
		if q.Get("u") != fakeUser || q.Get("pw") != fakePassword {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		f.logins++
		ticket := "TICKET_" + strconv.Itoa(f.logins)
		f.tickets[ticket] = true
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"ticket": ticket}})

		return
	}

	if !f.ticketOK(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case len(seg) == 1 && seg[0] == "sites":
		ids := make([]string, 0, len(f.sites))
		for id := range f.sites {
			ids = append(ids, id)
		}

		sort.Strings(ids)

		out := make([]map[string]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, map[string]string{"shortName": id, "title": f.sites[id].title})
		}

		writeJSON(w, http.StatusOK, out)
	case len(seg) == 2 && seg[0] == "sites":
		s, ok := f.sites[seg[1]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"shortName": s.id, "title": s.title})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAlfresco) servePublic(w http.ResponseWriter, r *http.Request, network string, seg []string) {
	if !f.basicOK(r) && !f.ticketOK(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch seg[0] {
	case "sites":
		f.serveSites(w, r, network, seg)
	case "people":
		f.serveFavorites(w, r, seg)
	case "nodes":
		f.serveNodes(w, r, seg)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAlfresco) serveSites(w http.ResponseWriter, r *http.Request, network string, seg []string) {
	switch {
	case len(seg) == 1 && r.Method == http.MethodPost:
		var body createSiteRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))

		if _, exists := f.sites[body.ID]; exists {
			writeJSON(w, http.StatusConflict, map[string]any{"error": map[string]string{"briefSummary": "site exists"}})
			return
		}

		s := f.addSiteLocked(body.ID, network, string(body.Visibility))
		s.title = body.Title
		writeJSON(w, http.StatusCreated, siteEntryJSON(s))
	case len(seg) == 2 && r.Method == http.MethodGet:
		s, ok := f.sites[seg[1]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, siteEntryJSON(s))
	case len(seg) == 2 && r.Method == http.MethodDelete:
		s, ok := f.sites[seg[1]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		delete(f.sites, s.id)
		w.WriteHeader(http.StatusNoContent)
	case len(seg) == 4 && seg[2] == "containers" && seg[3] == "documentLibrary":
		s, ok := f.sites[seg[1]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"entry": map[string]string{"id": s.libID, "folderId": "documentLibrary"}})
	default:
		http.NotFound(w, r)
	}
}

func siteEntryJSON(s *fakeSite) map[string]any {
	return map[string]any{"entry": map[string]string{
		"id":         s.id,
		"guid":       s.guid,
		"title":      s.title,
		"visibility": s.visibility,
	}}
}

func (f *fakeAlfresco) serveFavorites(w http.ResponseWriter, r *http.Request, seg []string) {
	if len(seg) < 3 || seg[2] != "favorites" {
		http.NotFound(w, r)
		return
	}

	user := seg[1]

	switch {
	case len(seg) == 3 && r.Method == http.MethodPost:
		var body favoriteRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(f.t, body.Target.Site)

		guid := string(body.Target.Site.GUID)
		if !f.guidExists(guid) {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if f.favorites[user][guid] {
			w.WriteHeader(http.StatusConflict)
			return
		}

		if f.favorites[user] == nil {
			f.favorites[user] = make(map[string]bool)
		}

		f.favorites[user][guid] = true
		writeJSON(w, http.StatusCreated, map[string]any{"entry": map[string]string{"targetGuid": guid}})
	case len(seg) == 4 && r.Method == http.MethodGet:
		if !f.favorites[user][seg[3]] {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"entry": map[string]string{"targetGuid": seg[3]}})
	case len(seg) == 4 && r.Method == http.MethodDelete:
		if !f.favorites[user][seg[3]] {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		delete(f.favorites[user], seg[3])
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAlfresco) guidExists(guid string) bool {
	for _, s := range f.sites {
		if s.guid == guid {
			return true
		}
	}

	return false
}

func (f *fakeAlfresco) serveNodes(w http.ResponseWriter, r *http.Request, seg []string) {
	if len(seg) < 2 {
		http.NotFound(w, r)
		return
	}

	n, ok := f.nodes[seg[1]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case len(seg) == 2 && r.Method == http.MethodDelete:
		f.deleteLocked(n.id)
		w.WriteHeader(http.StatusNoContent)
	case len(seg) == 3 && seg[2] == "children" && r.Method == http.MethodGet:
		f.listChildrenLocked(w, r, n)
	case len(seg) == 3 && seg[2] == "children" && r.Method == http.MethodPost:
		f.createChildLocked(w, r, n)
	case len(seg) == 3 && seg[2] == "content" && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", n.mime)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(n.content)
	case len(seg) == 3 && seg[2] == "content" && r.Method == http.MethodPut:
		body, err := io.ReadAll(r.Body)
		require.NoError(f.t, err)

		n.content = body
		n.mime = r.Header.Get("Content-Type")
		writeJSON(w, http.StatusOK, map[string]any{"entry": nodeJSON(n)})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAlfresco) deleteLocked(id string) {
	for _, c := range f.nodes {
		if c.parent == id {
			f.deleteLocked(c.id)
		}
	}

	delete(f.nodes, id)
}

func (f *fakeAlfresco) childrenOfLocked(id string) []*fakeNode {
	var out []*fakeNode

	for _, c := range f.nodes {
		if c.parent == id {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })

	return out
}

func (f *fakeAlfresco) listChildrenLocked(w http.ResponseWriter, r *http.Request, n *fakeNode) {
	children := f.childrenOfLocked(n.id)

	skip, _ := strconv.Atoi(r.URL.Query().Get("skipCount"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("maxItems"))

	if f.pageSize > 0 && (limit == 0 || f.pageSize < limit) {
		limit = f.pageSize
	}

	if limit == 0 {
		limit = len(children)
	}

	end := min(skip+limit, len(children))
	if skip > end {
		skip = end
	}

	page := children[skip:end]

	entries := make([]map[string]any, 0, len(page))
	for _, c := range page {
		entries = append(entries, map[string]any{"entry": nodeJSON(c)})
	}

	writeJSON(w, http.StatusOK, map[string]any{"list": map[string]any{
		"pagination": map[string]any{
			"count":        len(page),
			"hasMoreItems": end < len(children),
			"skipCount":    skip,
			"maxItems":     limit,
		},
		"entries": entries,
	}})
}

func (f *fakeAlfresco) createChildLocked(w http.ResponseWriter, r *http.Request, parent *fakeNode) {
	child := &fakeNode{parent: parent.id}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(f.t, err)

	if mediaType == "multipart/form-data" {
		mr := multipart.NewReader(r.Body, params["boundary"])

		for {
			part, partErr := mr.NextPart()
			if partErr == io.EOF {
				break
			}

			require.NoError(f.t, partErr)

			data, readErr := io.ReadAll(part)
			require.NoError(f.t, readErr)

			switch part.FormName() {
			case "name":
				child.name = string(data)
			case "filedata":
				child.content = data
				child.mime = part.Header.Get("Content-Type")
			}
		}
	} else {
		var body createFolderRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))

		child.name = body.Name
		child.folder = body.NodeType == nodeTypeFolder
	}

	for _, c := range f.childrenOfLocked(parent.id) {
		if c.name == child.name {
			writeJSON(w, http.StatusConflict, map[string]any{"error": map[string]string{"briefSummary": "duplicate child name"}})
			return
		}
	}

	child.id = f.newID("node")
	f.nodes[child.id] = child

	writeJSON(w, http.StatusCreated, map[string]any{"entry": nodeJSON(child)})
}

func nodeJSON(n *fakeNode) map[string]any {
	m := map[string]any{
		"id":         n.id,
		"name":       n.name,
		"parentId":   n.parent,
		"isFolder":   n.folder,
		"isFile":     !n.folder,
		"createdAt":  "2024-03-01T10:15:30.000+0000",
		"modifiedAt": "2024-03-01T10:15:30.000+0000",
	}

	if !n.folder {
		m["content"] = map[string]any{"mimeType": n.mime, "sizeInBytes": len(n.content)}
	}

	return m
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
