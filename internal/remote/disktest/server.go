// Package disktest runs an in-memory imitation of the disk REST API for tests.
package disktest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	EndpointResources = "resources"
	EndpointLink      = "upload-link"
	EndpointUpload    = "upload"
)

type Call struct {
	Method   string
	Endpoint string
	Path     string
	Query    url.Values
	Status   int
}

type node struct {
	dir      bool
	modified time.Time
	data     []byte
}

type fault struct {
	status int
	times  int
}

type Server struct {
	*httptest.Server

	// Token, when set, must arrive as "OAuth <Token>".
	Token string
	// Now stamps uploads and new folders.
	Now func() time.Time

	mu      sync.Mutex
	nodes   map[string]*node
	ghosts  map[string]*node
	stale   bool
	uploads map[string]string
	nextID  int
	calls   []Call
	faults  map[string]*fault
}

func New() *Server {
	s := &Server{
		Now:     time.Now,
		nodes:   map[string]*node{"": {dir: true}},
		ghosts:  map[string]*node{},
		uploads: map[string]string{},
		faults:  map[string]*fault{},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/v1/disk/resources", s.handleList)
	e.GET("/v1/disk/resources/upload", s.handleUploadLink)
	e.PUT("/v1/disk/resources", s.handleCreateFolder)
	e.DELETE("/v1/disk/resources", s.handleDelete)
	e.PUT("/upload/:id", s.handleUpload)

	s.Server = httptest.NewServer(e)

	return s
}

// BaseURL is what a client should use as its API base.
func (s *Server) BaseURL() string {
	return s.URL + "/v1/disk"
}

func clean(p string) string {
	p = strings.TrimPrefix(p, "disk:")
	p = path.Clean("/" + p)

	return strings.Trim(p, "/")
}

func parent(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}

	return dir
}

// Mkdir creates p and any missing parents.
func (s *Server) Mkdir(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mkdirAll(clean(p))
}

func (s *Server) mkdirAll(p string) {
	if p == "" {
		return
	}
	s.mkdirAll(parent(p))
	if _, ok := s.nodes[p]; !ok {
		s.nodes[p] = &node{dir: true, modified: s.Now()}
	}
}

// PutFile stores a file with the given modification time, creating parents.
func (s *Server) PutFile(p string, modified time.Time, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = clean(p)
	s.mkdirAll(parent(p))
	s.nodes[p] = &node{modified: modified, data: data}
}

func (s *Server) Exists(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.nodes[clean(p)]
	return ok
}

func (s *Server) IsDir(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[clean(p)]
	return ok && n.dir
}

// File returns the content and modification time of a stored file.
func (s *Server) File(p string) ([]byte, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[clean(p)]
	if !ok || n.dir {
		return nil, time.Time{}, false
	}

	return slices.Clone(n.data), n.modified, true
}

// Paths lists every stored path, sorted.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.nodes))
	for p := range s.nodes {
		if p != "" {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)

	return paths
}

// SetStaleListings makes deleted entries keep showing up in their parent's
// listing, like an eventually consistent backend.
func (s *Server) SetStaleListings(stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stale = stale
}

// Fail makes the next n requests to endpoint for p answer with status.
func (s *Server) Fail(method, endpoint, p string, status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.faults[faultKey(method, endpoint, clean(p))] = &fault{status: status, times: n}
}

func faultKey(method, endpoint, p string) string {
	return method + " " + endpoint + " " + p
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.calls)
}

// Count returns how many requests hit method+endpoint, any path.
func (s *Server) Count(method, endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.calls {
		if c.Method == method && c.Endpoint == endpoint {
			n++
		}
	}

	return n
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = nil
}

type errorBody struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// reply records the call and writes the response. Callers hold s.mu.
func (s *Server) reply(c echo.Context, endpoint, p string, status int, body any) error {
	s.calls = append(s.calls, Call{
		Method:   c.Request().Method,
		Endpoint: endpoint,
		Path:     p,
		Query:    c.QueryParams(),
		Status:   status,
	})
	if body == nil {
		return c.NoContent(status)
	}

	return c.JSON(status, body)
}

func (s *Server) fail(c echo.Context, endpoint, p string, status int, code string) error {
	return s.reply(c, endpoint, p, status, errorBody{
		Error:       code,
		Message:     http.StatusText(status),
		Description: code + ": " + p,
	})
}

// precheck applies auth and injected faults. Upload hrefs are pre-signed and
// need no token. It returns true when a response has already been written.
func (s *Server) precheck(c echo.Context, endpoint, p string) (bool, error) {
	authorized := c.Request().Header.Get("Authorization") == "OAuth "+s.Token
	if s.Token != "" && endpoint != EndpointUpload && !authorized {
		return true, s.fail(c, endpoint, p, http.StatusUnauthorized, "UnauthorizedError")
	}

	if f, ok := s.faults[faultKey(c.Request().Method, endpoint, p)]; ok && f.times > 0 {
		f.times--
		return true, s.fail(c, endpoint, p, f.status, "InjectedError")
	}

	return false, nil
}

func (s *Server) item(p string, n *node) map[string]any {
	typ := "file"
	if n.dir {
		typ = "dir"
	}

	return map[string]any{
		"name":     path.Base(p),
		"path":     "disk:/" + p,
		"type":     typ,
		"modified": n.modified.Format(time.RFC3339),
		"size":     len(n.data),
	}
}

func (s *Server) children(p string) []string {
	var names []string
	seen := map[string]bool{}
	collect := func(nodes map[string]*node) {
		for child := range nodes {
			if child != "" && parent(child) == p && !seen[child] {
				seen[child] = true
				names = append(names, child)
			}
		}
	}
	collect(s.nodes)
	if s.stale {
		collect(s.ghosts)
	}
	slices.Sort(names)

	return names
}

func (s *Server) lookup(p string) (*node, bool) {
	if n, ok := s.nodes[p]; ok {
		return n, true
	}
	n, ok := s.ghosts[p]

	return n, ok && s.stale
}

func (s *Server) handleList(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := clean(c.QueryParam("path"))
	if done, err := s.precheck(c, EndpointResources, p); done {
		return err
	}

	n, ok := s.nodes[p]
	if !ok {
		return s.fail(c, EndpointResources, p, http.StatusNotFound, "DiskNotFoundError")
	}
	body := s.item(p, n)
	if !n.dir {
		return s.reply(c, EndpointResources, p, http.StatusOK, body)
	}

	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	names := s.children(p)
	items := make([]map[string]any, 0, limit)
	for i := offset; i < len(names) && len(items) < limit; i++ {
		child, _ := s.lookup(names[i])
		items = append(items, s.item(names[i], child))
	}

	body["_embedded"] = map[string]any{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  len(names),
		"path":   "disk:/" + p,
	}

	return s.reply(c, EndpointResources, p, http.StatusOK, body)
}

func (s *Server) handleUploadLink(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := clean(c.QueryParam("path"))
	if done, err := s.precheck(c, EndpointLink, p); done {
		return err
	}

	if dir, ok := s.nodes[parent(p)]; !ok || !dir.dir {
		return s.fail(c, EndpointLink, p, http.StatusConflict, "DiskPathDoesntExistsError")
	}
	if n, ok := s.nodes[p]; ok && n.dir {
		return s.fail(c, EndpointLink, p, http.StatusConflict, "DiskResourceAlreadyExistsError")
	}

	s.nextID++
	id := strconv.Itoa(s.nextID)
	s.uploads[id] = p

	return s.reply(c, EndpointLink, p, http.StatusOK, map[string]any{
		"href":      fmt.Sprintf("%s/upload/%s", s.URL, id),
		"method":    http.MethodPut,
		"templated": false,
	})
}

func (s *Server) handleUpload(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.uploads[c.Param("id")]
	if !ok {
		return s.fail(c, EndpointUpload, c.Param("id"), http.StatusNotFound, "UploadNotFound")
	}
	delete(s.uploads, c.Param("id"))

	if done, err := s.precheck(c, EndpointUpload, p); done {
		return err
	}
	if err != nil {
		return s.fail(c, EndpointUpload, p, http.StatusBadRequest, "ReadError")
	}
	if _, ok := s.nodes[parent(p)]; !ok {
		return s.fail(c, EndpointUpload, p, http.StatusConflict, "DiskPathDoesntExistsError")
	}

	s.nodes[p] = &node{modified: s.Now(), data: data}
	delete(s.ghosts, p)

	return s.reply(c, EndpointUpload, p, http.StatusCreated, nil)
}

func (s *Server) handleCreateFolder(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := clean(c.QueryParam("path"))
	if done, err := s.precheck(c, EndpointResources, p); done {
		return err
	}

	if _, ok := s.nodes[p]; ok {
		return s.fail(c, EndpointResources, p, http.StatusConflict, "DiskPathPointsToExistentDirectoryError")
	}
	if dir, ok := s.nodes[parent(p)]; !ok || !dir.dir {
		return s.fail(c, EndpointResources, p, http.StatusConflict, "DiskPathDoesntExistsError")
	}

	s.nodes[p] = &node{dir: true, modified: s.Now()}
	delete(s.ghosts, p)

	return s.reply(c, EndpointResources, p, http.StatusCreated, map[string]any{
		"href":      s.BaseURL() + "/resources?path=disk:/" + p,
		"method":    http.MethodGet,
		"templated": false,
	})
}

func (s *Server) handleDelete(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := clean(c.QueryParam("path"))
	if done, err := s.precheck(c, EndpointResources, p); done {
		return err
	}

	n, ok := s.nodes[p]
	if !ok || p == "" {
		return s.fail(c, EndpointResources, p, http.StatusNotFound, "DiskNotFoundError")
	}
	if n.dir {
		for child := range s.nodes {
			if child != "" && parent(child) == p {
				return s.fail(c, EndpointResources, p, http.StatusBadRequest, "DiskNotEmptyError")
			}
		}
	}

	delete(s.nodes, p)
	s.ghosts[p] = n

	return s.reply(c, EndpointResources, p, http.StatusNoContent, nil)
}
