package devserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/gazette/internal/apperr"
	"github.com/starford/gazette/internal/site"
)

const notFoundHTML = "<html><head><title>Missing</title></head><body>nothing here</body></html>"

func writeOutput(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func sampleOutput(t *testing.T) string {
	return writeOutput(t, map[string]string{
		"404.html":               notFoundHTML,
		"index.html":             "<html><head></head><body>home</body></html>",
		"posts/first/index.html": "<html><head></head><body>first</body></html>",
		"assets/site.css":        "body{color:red}",
	})
}

type countingRecorder struct {
	mu       sync.Mutex
	notFound int
}

func (c *countingRecorder) ObserveStageDuration(string, time.Duration) {}
func (c *countingRecorder) ObserveBuildDuration(time.Duration)         {}
func (c *countingRecorder) IncBuildOutcome(string)                     {}
func (c *countingRecorder) SetCollectionSize(string, int)              {}
func (c *countingRecorder) AddFilesWritten(string, int)                {}
func (c *countingRecorder) IncNotFound() {
	c.mu.Lock()
	c.notFound++
	c.mu.Unlock()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestNewStatic_Missing404(t *testing.T) {
	dir := writeOutput(t, map[string]string{"index.html": "home"})
	if _, err := NewStatic(dir); !errors.Is(err, apperr.ErrMissing404) {
		t.Fatalf("err = %v, want ErrMissing404", err)
	}
}

func TestStatic_ServesFilesAndIndexes(t *testing.T) {
	s, err := NewStatic(sampleOutput(t))
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}

	w := get(t, s, "/posts/first/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "first") {
		t.Errorf("dir with slash: %d %q", w.Code, w.Body.String())
	}

	w = get(t, s, "/posts/first")
	if w.Code != http.StatusOK {
		t.Errorf("dir without slash status = %d, want 200", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "" {
		t.Errorf("unexpected redirect to %q", loc)
	}

	w = get(t, s, "/assets/site.css")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/css") {
		t.Errorf("css: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestStatic_NotFoundFallback(t *testing.T) {
	rec := &countingRecorder{}
	s, err := NewStatic(sampleOutput(t), WithRecorder(rec))
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}

	for _, target := range []string{"/nope", "/posts/missing/", "/../etc/passwd", "/index.html/extra"} {
		w := get(t, s, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/html" {
			t.Errorf("%s: content-type = %q, want text/html", target, ct)
		}
		if w.Body.String() != notFoundHTML {
			t.Errorf("%s: body = %q", target, w.Body.String())
		}
		if loc := w.Header().Get("Location"); loc != "" {
			t.Errorf("%s: unexpected redirect to %q", target, loc)
		}
	}
	if rec.notFound != 4 {
		t.Errorf("not-found count = %d, want 4", rec.notFound)
	}
}

func TestStatic_LiveReloadInjection(t *testing.T) {
	s, err := NewStatic(sampleOutput(t), WithLiveReload())
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}

	body := get(t, s, "/").Body.String()
	if !strings.Contains(body, ReloadPath) {
		t.Fatalf("reload script missing: %q", body)
	}
	if strings.Index(body, "<script>") > strings.Index(body, "</head>") {
		t.Error("script should precede </head>")
	}

	css := get(t, s, "/assets/site.css").Body.String()
	if strings.Contains(css, ReloadPath) {
		t.Error("non-HTML response was modified")
	}

	if nf := get(t, s, "/missing").Body.String(); !strings.Contains(nf, ReloadPath) {
		t.Error("404 page should carry the reload script")
	}
}

func TestInjectReload_NoHead(t *testing.T) {
	got := string(InjectReload([]byte("<p>bare</p>")))
	if !strings.HasPrefix(got, "<p>bare</p>") || !strings.HasSuffix(got, "</script>") {
		t.Errorf("got %q", got)
	}
}

func TestRouter_HealthAndFallback(t *testing.T) {
	s, err := NewStatic(sampleOutput(t))
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	api := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "api")
	})
	r := NewRouter(Routes{Static: s, API: api})

	if w := get(t, r, "/health/live"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("health: %d %q", w.Code, w.Body.String())
	}
	if w := get(t, r, "/api/anything"); w.Body.String() != "api" {
		t.Errorf("api mount: %q", w.Body.String())
	}
	if w := get(t, r, "/posts/first/"); w.Code != http.StatusOK {
		t.Errorf("static: %d", w.Code)
	}
	if w := get(t, r, "/does/not/exist"); w.Code != http.StatusNotFound || w.Body.String() != notFoundHTML {
		t.Errorf("fallback: %d %q", w.Code, w.Body.String())
	}
}

type fakeBuilder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeBuilder) Build(context.Context) (*site.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &site.Result{ID: "build-1", Duration: time.Millisecond}, nil
}

func (f *fakeBuilder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	rebuilt chan string
	failed  chan error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{rebuilt: make(chan string, 8), failed: make(chan error, 8)}
}

func (n *fakeNotifier) PublishRebuilt(id string, _ time.Duration) { n.rebuilt <- id }
func (n *fakeNotifier) PublishBuildFailed(err error)              { n.failed <- err }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRebuilder_DebouncesBurst(t *testing.T) {
	b := &fakeBuilder{}
	n := newFakeNotifier()
	rb := NewRebuilder(b, n, 20*time.Millisecond, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = rb.Run(ctx)
		close(done)
	}()

	for range 5 {
		rb.Trigger()
	}

	select {
	case id := <-n.rebuilt:
		if id != "build-1" {
			t.Errorf("build id = %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rebuild")
	}

	time.Sleep(100 * time.Millisecond)
	if c := b.count(); c != 1 {
		t.Errorf("builds = %d, want 1", c)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRebuilder_PublishesFailure(t *testing.T) {
	b := &fakeBuilder{err: errors.New("template broke")}
	n := newFakeNotifier()
	rb := NewRebuilder(b, n, time.Millisecond, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = rb.Run(ctx) }()

	rb.Trigger()
	select {
	case err := <-n.failed:
		if !strings.Contains(err.Error(), "template broke") {
			t.Errorf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for failure")
	}
}
