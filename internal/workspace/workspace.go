// Package workspace owns one open capture: its decoded document, the most
// recent frame graph built from it, the build cache, thumbnails and the
// file watcher that triggers rebuilds. The CLI, the terminal viewer and the
// HTTP server all read graphs through a Workspace.
package workspace

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Iron-Ham/framegraph/internal/cache"
	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/config"
	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/event"
	"github.com/Iron-Ham/framegraph/internal/export"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/logging"
	"github.com/Iron-Ham/framegraph/internal/thumbnail"
	"github.com/Iron-Ham/framegraph/internal/watch"
)

// Options configures Open.
type Options struct {
	Config *config.Config
	Logger *logging.Logger
	// Bus receives lifecycle events. A private bus is created when nil.
	Bus *event.Bus
	// Cache overrides the on-disk cache. The caller keeps ownership.
	Cache *cache.Cache
	// NoCache disables caching even when the configuration enables it.
	NoCache bool
}

// State is a point-in-time view of the workspace.
type State struct {
	Path     string
	Digest   string
	Graph    *framegraph.Graph
	Cached   bool
	Err      error
	LoadedAt time.Time
}

// Workspace manages a single capture file.
type Workspace struct {
	path   string
	cfg    *config.Config
	logger *logging.Logger
	bus    *event.Bus
	cache  *cache.Cache
	// ownsCache is set when Open created the cache and Close must release it.
	ownsCache bool
	thumbs    *thumbnail.Loader

	// buildMu serialises reloads so a watch-triggered rebuild never races a
	// manual one.
	buildMu sync.Mutex

	mu       sync.RWMutex
	doc      *capture.Document
	digest   string
	graph    *framegraph.Graph
	cached   bool
	lastErr  error
	loadedAt time.Time
	watcher  *watch.Watcher
	closed   bool
	done     chan struct{}
}

// Open prepares a workspace for path. Nothing is read until Load.
func Open(path string, opts Options) (*Workspace, error) {
	if path == "" {
		return nil, errors.NewValidationError("capture path is required").WithField("path")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithCapture(path)
	bus := opts.Bus
	if bus == nil {
		bus = event.NewBus(logger)
	}

	ws := &Workspace{
		path:   path,
		cfg:    cfg,
		logger: logger,
		bus:    bus,
		cache:  opts.Cache,
		done:   make(chan struct{}),
	}

	if ws.cache == nil && !opts.NoCache && cfg.Build.Cache {
		dir := cfg.Build.ResolveCacheDir(config.StateDir())
		cc := cache.DefaultConfig(dir)
		cc.GCInterval = cfg.Build.CacheGCInterval()
		cc.Logger = logger
		c, err := cache.Open(cc)
		if err != nil {
			// A locked or unreadable cache only costs rebuild time.
			logger.Warn("build cache unavailable", "dir", dir, "error", err)
		} else {
			ws.cache = c
			ws.ownsCache = true
		}
	}
	if opts.NoCache {
		ws.cache = nil
	}

	maxEdge := cfg.Thumbnail.MaxEdge
	ws.thumbs = thumbnail.NewLoader(maxEdge, ws.thumbnailPath)
	return ws, nil
}

// Path returns the capture path.
func (w *Workspace) Path() string { return w.path }

// Bus returns the event bus lifecycle events are published on.
func (w *Workspace) Bus() *event.Bus { return w.bus }

// Config returns the configuration the workspace was opened with.
func (w *Workspace) Config() *config.Config { return w.cfg }

// Logger returns the workspace logger.
func (w *Workspace) Logger() *logging.Logger { return w.logger }

// Load reads the capture and makes a graph available, from the cache when
// the capture digest matches a stored build.
func (w *Workspace) Load(ctx context.Context) (*framegraph.Graph, error) {
	return w.refresh(ctx, true)
}

// Rebuild reads the capture and always runs the builder, replacing any
// cached result.
func (w *Workspace) Rebuild(ctx context.Context) (*framegraph.Graph, error) {
	return w.refresh(ctx, false)
}

func (w *Workspace) refresh(ctx context.Context, useCache bool) (*framegraph.Graph, error) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	if err := w.checkOpen(); err != nil {
		return nil, err
	}

	start := time.Now()
	doc, digest, err := w.read()
	if err != nil {
		return nil, w.fail(err)
	}
	w.bus.Publish(event.NewCaptureLoadedEvent(w.path, digest, doc.EventCount()))

	if useCache && w.cache != nil {
		g, err := w.cache.Get(ctx, digest)
		switch {
		case err == nil:
			w.logger.Info("graph loaded from cache", "digest", digest, "build_id", g.BuildID)
			w.bus.Publish(event.NewCacheHitEvent(digest))
			w.commit(doc, digest, g, true)
			w.bus.Publish(event.NewBuildFinishedEvent(g, true, time.Since(start)))
			return g, nil
		case errors.Is(err, errors.ErrCacheMiss):
		default:
			w.logger.Warn("cache read failed", "digest", digest, "error", err)
		}
	}

	w.bus.Publish(event.NewBuildStartedEvent(digest))
	g, err := framegraph.Build(ctx, doc, framegraph.Options{
		Workers: w.cfg.Build.Workers,
		Logger:  w.logger,
		Progress: func(p framegraph.Progress) {
			w.bus.Publish(event.NewBuildProgressEvent(p))
		},
	})
	if err != nil {
		return nil, w.fail(err)
	}

	if w.cache != nil {
		if err := w.cache.Put(ctx, digest, g); err != nil {
			w.logger.Warn("cache write failed", "digest", digest, "error", err)
		}
	}
	w.commit(doc, digest, g, false)
	w.bus.Publish(event.NewBuildFinishedEvent(g, false, time.Since(start)))
	return g, nil
}

func (w *Workspace) read() (*capture.Document, string, error) {
	doc, err := capture.Load(w.path)
	if err != nil {
		return nil, "", err
	}
	digest, err := doc.Digest()
	if err != nil {
		return nil, "", errors.NewCaptureError("digest capture", err).WithPath(w.path)
	}
	return doc, digest, nil
}

// commit swaps in a new document and graph. Thumbnails are dropped because
// image files may have been rewritten alongside the capture.
func (w *Workspace) commit(doc *capture.Document, digest string, g *framegraph.Graph, cached bool) {
	w.mu.Lock()
	w.doc = doc
	w.digest = digest
	w.graph = g
	w.cached = cached
	w.lastErr = nil
	w.loadedAt = time.Now()
	w.mu.Unlock()
	w.thumbs.Forget()
}

// fail records err without discarding the previous graph, so viewers keep
// showing the last good build while the capture is being rewritten.
func (w *Workspace) fail(err error) error {
	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()
	w.logger.Error("capture load failed", "error", err)
	w.bus.Publish(event.NewBuildFailedEvent(err))
	return err
}

// Graph returns the current graph or ErrGraphNotBuilt.
func (w *Workspace) Graph() (*framegraph.Graph, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.graph == nil {
		if w.lastErr != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrGraphNotBuilt, w.lastErr)
		}
		return nil, errors.ErrGraphNotBuilt
	}
	return w.graph, nil
}

// Document returns the decoded capture or ErrCaptureNotLoaded.
func (w *Workspace) Document() (*capture.Document, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.doc == nil {
		return nil, errors.ErrCaptureNotLoaded
	}
	return w.doc, nil
}

// State returns a snapshot of the workspace.
func (w *Workspace) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return State{
		Path:     w.path,
		Digest:   w.digest,
		Graph:    w.graph,
		Cached:   w.cached,
		Err:      w.lastErr,
		LoadedAt: w.loadedAt,
	}
}

func (w *Workspace) thumbnailPath(t capture.Texture) string {
	w.mu.RLock()
	doc := w.doc
	w.mu.RUnlock()
	if doc == nil {
		return t.Thumbnail
	}
	return doc.ThumbnailPath(t)
}

// Thumbnails returns the thumbnail loader, or nil when previews are disabled.
func (w *Workspace) Thumbnails() export.Thumbnails {
	if !w.cfg.Thumbnail.Enabled {
		return nil
	}
	return w.thumbs
}

// ExportOptions returns export options derived from the configuration.
func (w *Workspace) ExportOptions() export.Options {
	opts := export.OptionsFromConfig(w.cfg)
	opts.Thumbs = w.Thumbnails()
	return opts
}

// Export renders the current graph in format f.
func (w *Workspace) Export(out io.Writer, f export.Format) error {
	g, err := w.Graph()
	if err != nil {
		return errors.NewExportError("render", err).WithFormat(string(f))
	}
	return export.Write(out, g, f, w.ExportOptions())
}

// Watch reloads the capture whenever it changes on disk until ctx is done
// or Close is called. Reload errors are published as BuildFailed events.
func (w *Workspace) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return errors.ErrCaptureNotLoaded
	}
	if w.watcher != nil {
		w.mu.Unlock()
		return nil
	}
	wt, err := watch.New(w.cfg.TUI.WatchDebounce(), w.logger)
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := wt.Add(w.path); err != nil {
		w.mu.Unlock()
		wt.Stop()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.watcher = wt
	w.mu.Unlock()

	wt.SetCallback(func(paths []string) {
		w.logger.Info("capture changed", "paths", paths)
		w.bus.Publish(event.NewCaptureChangedEvent(paths))
		if ctx.Err() != nil {
			return
		}
		_, _ = w.Load(ctx)
	})
	wt.Start()

	go func() {
		select {
		case <-ctx.Done():
			wt.Stop()
		case <-w.done:
		}
	}()
	return nil
}

// Close stops watching and releases the cache if the workspace opened it.
func (w *Workspace) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	wt := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	if wt != nil {
		wt.Stop()
	}
	if w.ownsCache && w.cache != nil {
		return w.cache.Close()
	}
	return nil
}

func (w *Workspace) checkOpen() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errors.Wrap(errors.ErrCaptureNotLoaded, "workspace closed")
	}
	return nil
}
