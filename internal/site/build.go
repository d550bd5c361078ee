// Package site runs the static build: it indexes the content tree, assembles
// collections, renders pages through layouts, applies transforms and copies
// passthrough files.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path"
	texttemplate "text/template"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/starford/gazette/internal/collections"
	"github.com/starford/gazette/internal/index"
	"github.com/starford/gazette/internal/markdown"
	"github.com/starford/gazette/internal/metrics"
	"github.com/starford/gazette/internal/models"
	"github.com/starford/gazette/internal/shortcodes"
	"github.com/starford/gazette/internal/storage"
	"github.com/starford/gazette/internal/transforms"
)

// Build environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Options configures a Site.
type Options struct {
	Layout         Layout
	Meta           Metadata
	Env            string
	PageSize       int
	Language       language.Tag
	HighlightStyle string
	// Now returns the build instant; defaults to time.Now.
	Now func() time.Time
}

// Production reports whether the build minifies HTML.
func (o Options) Production() bool { return o.Env == EnvProduction }

// PageData is the value every template executes against.
type PageData struct {
	Page        *models.Item
	Data        models.FrontMatter
	Content     template.HTML
	Collections *collections.Set
	Pagination  *collections.Page
	Site        Metadata
	Global      map[string]any
	Env         string
	BuildID     string
	Now         time.Time
}

// Result summarises one build.
type Result struct {
	ID          string
	Started     time.Time
	Duration    time.Duration
	Sync        index.SyncStats
	Pages       int
	Listings    int
	Copied      int
	Unchanged   int
	Collections *collections.Set
}

// Site builds one project.
type Site struct {
	db       *index.DB
	store    storage.Provider
	opts     Options
	logger   *slog.Logger
	recorder metrics.Recorder
	pageMD   *markdown.Renderer
}

// New creates a Site reading content through store and indexing it in db.
// A nil recorder disables metrics.
func New(db *index.DB, store storage.Provider, opts Options, logger *slog.Logger, recorder metrics.Recorder) *Site {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Env == "" {
		opts.Env = EnvDevelopment
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Site{
		db:       db,
		store:    store,
		opts:     opts,
		logger:   logger,
		recorder: recorder,
		pageMD:   markdown.New(markdown.WithFootnotes(), markdown.WithInserted(), markdown.WithHighlighting(opts.HighlightStyle)),
	}
}

// Build runs the full pipeline once. Any failing step aborts the build.
func (s *Site) Build(ctx context.Context) (*Result, error) {
	res := &Result{ID: uuid.NewString(), Started: time.Now()}
	logger := s.logger.With(slog.String("build_id", res.ID), slog.String("env", s.opts.Env))
	logger.Info("build: started", slog.String("src", s.opts.Layout.Src), slog.String("output", s.opts.Layout.Output))

	err := s.build(ctx, res, logger)
	res.Duration = time.Since(res.Started)
	s.recorder.ObserveBuildDuration(res.Duration)
	if err != nil {
		s.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		logger.Error("build: failed", slog.String("error", err.Error()))
		return nil, err
	}
	s.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	logger.Info("build: finished",
		slog.Int("pages", res.Pages),
		slog.Int("listings", res.Listings),
		slog.Int("copied", res.Copied),
		slog.Duration("duration", res.Duration))
	return res, nil
}

func (s *Site) build(ctx context.Context, res *Result, logger *slog.Logger) error {
	stage := func(name string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := fn()
		s.recorder.ObserveStageDuration(name, time.Since(start))
		return err
	}

	if err := stage("sync", func() error {
		stats, err := index.Sync(s.db, s.store, logger)
		res.Sync = stats
		if err != nil {
			return err
		}
		if stats.Failed > 0 {
			return fmt.Errorf("site: %d content files failed to index", stats.Failed)
		}
		return nil
	}); err != nil {
		return err
	}

	var items []*models.Item
	if err := stage("load", func() error {
		var err error
		items, err = s.db.Items()
		return err
	}); err != nil {
		return err
	}

	now := s.opts.Now()
	var set *collections.Set
	if err := stage("collections", func() error {
		opts := []collections.Option{collections.WithPageSize(s.opts.PageSize)}
		if s.opts.Language != language.Und {
			opts = append(opts, collections.WithLanguage(s.opts.Language))
		}
		set = collections.New(now, opts...).All(items)
		return nil
	}); err != nil {
		return err
	}
	res.Collections = set
	for name, n := range set.Sizes() {
		s.recorder.SetCollectionSize(name, n)
	}

	funcs := shortcodes.New(shortcodes.Config{
		CloudinaryName: s.opts.Meta.CloudinaryName,
		BaseURL:        s.opts.Meta.URL,
	}, now, set.Memoized).FuncMap()

	global, err := LoadGlobalData(s.opts.Layout.Data)
	if err != nil {
		return err
	}
	ls, err := loadLayouts(s.opts.Layout.Includes, funcs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.opts.Layout.Output, 0o755); err != nil {
		return fmt.Errorf("site: create output: %w", err)
	}
	out, err := storage.NewFS(s.opts.Layout.Output)
	if err != nil {
		return err
	}
	w := &writer{out: out, chain: transforms.ForEnv(s.opts.Production(), s.opts.Meta.URL)}

	base := PageData{
		Collections: set,
		Site:        s.opts.Meta,
		Global:      global,
		Env:         s.opts.Env,
		BuildID:     res.ID,
		Now:         now,
	}

	if err := stage("render", func() error {
		for _, it := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if it.Unpublished() {
				continue
			}
			html, err := s.renderItem(it, base, funcs, ls)
			if err != nil {
				return err
			}
			if err := w.write(it.OutputPath(), html); err != nil {
				return err
			}
			res.Pages++
		}
		return nil
	}); err != nil {
		return err
	}
	s.recorder.AddFilesWritten("page", res.Pages)

	if err := stage("listings", func() error {
		n, err := s.renderListings(set, base, ls, w)
		res.Listings = n
		return err
	}); err != nil {
		return err
	}
	s.recorder.AddFilesWritten("listing", res.Listings)

	if err := stage("passthrough", func() error {
		copied, unchanged, err := Passthrough(s.opts.Layout)
		res.Copied, res.Unchanged = copied, unchanged
		return err
	}); err != nil {
		return err
	}
	s.recorder.AddFilesWritten("passthrough", res.Copied)
	return nil
}

// renderItem executes the body as a template, converts Markdown to HTML
// and wraps the result in the item's layout chain.
func (s *Site) renderItem(it *models.Item, base PageData, funcs template.FuncMap, ls *layouts) ([]byte, error) {
	data := base
	data.Page = it
	data.Data = it.Data

	body, err := executeBody(it, &data, funcs)
	if err != nil {
		return nil, err
	}
	if path.Ext(it.InputPath) == ".md" {
		body, err = s.pageMD.Render(body)
		if err != nil {
			return nil, fmt.Errorf("site: %s: %w", it.InputPath, err)
		}
	}
	data.Content = template.HTML(body)

	if name := it.Layout(); name != "" {
		if _, err := ls.Apply(name, &data); err != nil {
			return nil, fmt.Errorf("site: %s: %w", it.InputPath, err)
		}
	}
	return []byte(data.Content), nil
}

// executeBody runs the item body through text/template so shortcodes can
// be used inside Markdown without HTML escaping of the surrounding text.
func executeBody(it *models.Item, data *PageData, funcs template.FuncMap) (string, error) {
	t, err := texttemplate.New(it.InputPath).Funcs(texttemplate.FuncMap(funcs)).Parse(it.Body)
	if err != nil {
		return "", fmt.Errorf("site: %s: %w", it.InputPath, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("site: %s: %w", it.InputPath, err)
	}
	return buf.String(), nil
}

// listing binds a paged collection to the layout that renders it.
type listing struct {
	collection string
	layout     string
	pages      []collections.Page
}

// renderListings writes every page of the paged collections whose layout
// exists. A listing page sharing its URL with a term page replaces it.
func (s *Site) renderListings(set *collections.Set, base PageData, ls *layouts, w *writer) (int, error) {
	listings := []listing{
		{collections.CategoriesPaged, "category", set.CategoriesPaged},
		{collections.AuthorsPaged, "author", set.AuthorsPaged},
		{collections.TagsPaged, "tag", set.TagsPaged},
	}
	written := 0
	for _, l := range listings {
		if !ls.Has(l.layout) {
			s.logger.Debug("build: listing layout missing", slog.String("collection", l.collection), slog.String("layout", l.layout))
			continue
		}
		for i := range l.pages {
			p := &l.pages[i]
			data := base
			data.Page = p.Item
			if p.Item != nil {
				data.Data = p.Item.Data
			}
			data.Pagination = p
			html, err := ls.Apply(l.layout, &data)
			if err != nil {
				return written, err
			}
			target := (&models.Item{URL: p.URL}).OutputPath()
			if err := w.write(target, []byte(html)); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

// writer applies the transform chain and writes output files atomically.
type writer struct {
	out   *storage.FS
	chain transforms.Chain
}

func (w *writer) write(rel string, content []byte) error {
	content, err := w.chain.Apply(rel, content)
	if err != nil {
		return err
	}
	return w.out.Write(rel, content)
}
