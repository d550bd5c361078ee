// Package devserver serves a built site locally: static files with a 404
// fallback, live-reload injection and debounced rebuilds.
package devserver

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/gazette/internal/apperr"
	"github.com/starford/gazette/internal/metrics"
)

// NotFoundPage is the output-relative file served for unmatched requests.
const NotFoundPage = "404.html"

// Static serves files from the output directory. Directory requests are
// answered with their index.html whether or not the path ends in a slash;
// nothing is ever redirected. Unmatched requests get the 404 page read at
// construction time.
type Static struct {
	root     string
	notFound []byte
	reload   bool
	recorder metrics.Recorder
}

// StaticOption configures Static.
type StaticOption func(*Static)

// WithLiveReload injects the live-reload client into HTML responses.
func WithLiveReload() StaticOption {
	return func(s *Static) { s.reload = true }
}

// WithRecorder counts 404 responses on r.
func WithRecorder(r metrics.Recorder) StaticOption {
	return func(s *Static) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewStatic reads <root>/404.html and returns a handler over root. A
// missing 404 page is reported as apperr.ErrMissing404.
func NewStatic(root string, opts ...StaticOption) (*Static, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("devserver: resolve root: %w", err)
	}
	page, err := os.ReadFile(filepath.Join(abs, NotFoundPage))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("devserver: %s: %w", filepath.Join(abs, NotFoundPage), apperr.ErrMissing404)
		}
		return nil, fmt.Errorf("devserver: read 404 page: %w", err)
	}
	s := &Static{root: abs, notFound: page, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, info, ok := s.resolve(r.URL.Path)
	if !ok {
		s.NotFound(w, r)
		return
	}

	if strings.EqualFold(filepath.Ext(file), ".html") {
		body, err := os.ReadFile(file)
		if err != nil {
			s.NotFound(w, r)
			return
		}
		if s.reload {
			body = InjectReload(body)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, "", info.ModTime(), bytes.NewReader(body))
		return
	}

	f, err := os.Open(file)
	if err != nil {
		s.NotFound(w, r)
		return
	}
	defer f.Close()
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// resolve maps a URL path to a regular file under root.
func (s *Static) resolve(urlPath string) (string, fs.FileInfo, bool) {
	clean := path.Clean("/" + urlPath)
	file := filepath.Join(s.root, filepath.FromSlash(clean))

	info, err := os.Stat(file)
	if err != nil {
		return "", nil, false
	}
	if info.IsDir() {
		file = filepath.Join(file, "index.html")
		if info, err = os.Stat(file); err != nil {
			return "", nil, false
		}
	}
	if !info.Mode().IsRegular() {
		return "", nil, false
	}
	return file, info, true
}

// NotFound writes the 404 page with status 404.
func (s *Static) NotFound(w http.ResponseWriter, r *http.Request) {
	s.recorder.IncNotFound()
	body := s.notFound
	if s.reload {
		body = InjectReload(body)
	}
	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusNotFound)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}
