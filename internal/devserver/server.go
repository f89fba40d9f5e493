// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ReloadCheckPath is the endpoint polled by the injected script.
const ReloadCheckPath = "/reload-check"

// ReloadStatus is the /reload-check response body.
type ReloadStatus struct {
	Reload bool `json:"reload"`
}

// Server serves the mirrored tree. It implements http.Handler.
type Server struct {
	root   string
	flag   *ReloadFlag
	files  http.Handler
	logger *log.Logger
}

// NewServer returns a handler serving root. flag is cleared by each
// /reload-check request.
func NewServer(root string, flag *ReloadFlag, logger *log.Logger) *Server {
	if logger == nil {
		logger = NewLogger(os.Stderr)
	}
	return &Server{
		root:   root,
		flag:   flag,
		files:  http.FileServer(http.Dir(root)),
		logger: logger,
	}
}

// ServeHTTP disables caching on every response, answers reload checks,
// injects the reload script into HTML pages and serves everything else
// from disk.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setNoCache(w.Header())

	p := r.URL.Path
	if p == ReloadCheckPath {
		s.handleReloadCheck(w)
		return
	}
	if strings.HasSuffix(p, ".html") || strings.HasSuffix(p, "/") {
		if s.serveInjected(w, r) {
			return
		}
	}
	s.files.ServeHTTP(noCacheWriter{w}, r)
}

func setNoCache(h http.Header) {
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	h.Set("Expires", "0")
}

// noCacheWriter restores the no-cache headers that http.FileServer drops
// from error responses.
type noCacheWriter struct {
	http.ResponseWriter
}

func (w noCacheWriter) WriteHeader(code int) {
	setNoCache(w.Header())
	w.ResponseWriter.WriteHeader(code)
}

func (w noCacheWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (s *Server) handleReloadCheck(w http.ResponseWriter) {
	body, err := json.Marshal(ReloadStatus{Reload: s.flag.Take()})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

// serveInjected writes the page with the reload script and reports whether
// it handled the request. Pages that cannot be read fall through to the
// file server.
func (s *Server) serveInjected(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	name := path.Clean("/" + r.URL.Path)
	if strings.HasSuffix(r.URL.Path, "/") {
		name = path.Join(name, "index.html")
	}
	file := filepath.Join(s.root, filepath.FromSlash(name))

	page, err := os.ReadFile(file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("Error injecting reload script", "path", name, "err", err)
		}
		return false
	}

	body := InjectReloadScript(page)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(body)
	}
	return true
}
