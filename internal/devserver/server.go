package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes are the handlers mounted by NewRouter. Only Static is required.
type Routes struct {
	Static  *Static
	Reload  http.Handler
	API     http.Handler
	Metrics http.Handler
}

// NewRouter mounts health probes, the API, the reload stream and metrics,
// and hands every other request to the static handler.
func NewRouter(rt Routes) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Set before Mount so sub-routers inherit it.
	r.NotFound(rt.Static.NotFound)

	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	if rt.API != nil {
		r.Mount("/api", rt.API)
	}
	if rt.Reload != nil {
		r.Get(ReloadPath, rt.Reload.ServeHTTP)
	}
	if rt.Metrics != nil {
		r.Handle("/metrics", rt.Metrics)
	}

	r.Handle("/*", rt.Static)
	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
