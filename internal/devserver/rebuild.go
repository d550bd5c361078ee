package devserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/gazette/internal/site"
)

// DefaultDebounce is the quiet period before a triggered rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// Builder runs one full site build.
type Builder interface {
	Build(ctx context.Context) (*site.Result, error)
}

// Notifier is told about the outcome of every rebuild.
type Notifier interface {
	PublishRebuilt(buildID string, took time.Duration)
	PublishBuildFailed(err error)
}

// Rebuilder coalesces bursts of change notifications into single builds.
// Builds never overlap; a trigger that arrives during a build schedules
// one more build after it.
type Rebuilder struct {
	builder Builder
	notify  Notifier
	delay   time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	requests chan struct{}
}

// NewRebuilder creates a Rebuilder. A delay of zero or less uses DefaultDebounce.
func NewRebuilder(b Builder, n Notifier, delay time.Duration, logger *slog.Logger) *Rebuilder {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Rebuilder{
		builder:  b,
		notify:   n,
		delay:    delay,
		logger:   logger,
		requests: make(chan struct{}, 1),
	}
}

// Trigger schedules a rebuild once no further trigger has arrived for the
// debounce delay.
func (r *Rebuilder) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, func() {
		select {
		case r.requests <- struct{}{}:
		default:
		}
	})
}

// Run processes rebuild requests until ctx is cancelled. Build failures
// are logged and published; they never stop the loop.
func (r *Rebuilder) Run(ctx context.Context) error {
	defer r.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.requests:
			r.rebuild(ctx)
		}
	}
}

func (r *Rebuilder) rebuild(ctx context.Context) {
	res, err := r.builder.Build(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn("devserver: rebuild failed", slog.String("error", err.Error()))
		r.notify.PublishBuildFailed(err)
		return
	}
	r.logger.Info("devserver: rebuilt",
		slog.String("build_id", res.ID),
		slog.Int("pages", res.Pages),
		slog.Duration("duration", res.Duration))
	r.notify.PublishRebuilt(res.ID, res.Duration)
}

func (r *Rebuilder) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}
