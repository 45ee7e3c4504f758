// Package cache persists built frame graphs in a badger store keyed by the
// capture digest and the builder version, so reopening an unchanged capture
// skips the build.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/logging"
)

const keyPrefix = "graph/"

// Config configures Open.
type Config struct {
	// Path is the store directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// TTL expires entries after this long. Zero keeps them forever.
	TTL time.Duration
	// GCInterval is how often the value log is garbage collected.
	// Zero disables collection.
	GCInterval     time.Duration
	GCDiscardRatio float64
	Logger         *logging.Logger
}

// DefaultConfig returns a persistent configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration that never touches disk.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Cache stores graph snapshots. It is safe for concurrent use.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *logging.Logger

	mu     sync.RWMutex
	closed bool
	stopGC chan struct{}
	gcDone chan struct{}
}

// badgerLogger routes badger's internal logging to our logger.
type badgerLogger struct {
	logger *logging.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Open opens or creates the store.
func Open(cfg Config) (*Cache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.NewValidationError("cache path is required").WithField("build.cache_dir")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.With("component", "cache")

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	c := &Cache{db: db, ttl: cfg.TTL, logger: logger}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		ratio := cfg.GCDiscardRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = 0.5
		}
		c.stopGC = make(chan struct{})
		c.gcDone = make(chan struct{})
		go c.runGC(cfg.GCInterval, ratio)
	}
	return c, nil
}

// Key returns the store key of a capture digest for the current builder.
func Key(digest string) []byte {
	return []byte(keyPrefix + framegraph.BuilderVersion + "/" + digest)
}

// Get returns the cached graph for digest, or an error matching
// errors.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, digest string) (*framegraph.Graph, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	defer c.mu.RUnlock()

	var g framegraph.Graph
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(Key(digest))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &g)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrapf(errors.ErrCacheMiss, "digest %s", digest)
	}
	if err != nil {
		return nil, fmt.Errorf("read cached graph: %w", err)
	}
	c.logger.Debug("cache hit", "digest", digest, "build_id", g.BuildID)
	return g.Restore(), nil
}

// Put stores g under digest.
func (c *Cache) Put(ctx context.Context, digest string, g *framegraph.Graph) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	defer c.mu.RUnlock()

	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(Key(digest), data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("write cached graph: %w", err)
	}
	c.logger.Debug("cache stored", "digest", digest, "bytes", len(data))
	return nil
}

// Delete removes the entry for digest. Missing entries are not an error.
func (c *Cache) Delete(ctx context.Context, digest string) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	defer c.mu.RUnlock()

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(Key(digest))
	})
}

// Digests lists the digests cached for the current builder version.
func (c *Cache) Digests(ctx context.Context) ([]string, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	defer c.mu.RUnlock()

	prefix := Key("")
	var out []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			out = append(out, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	return out, err
}

// Prune deletes entries written by other builder versions and returns how
// many were removed.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	if err := c.check(ctx); err != nil {
		return 0, err
	}
	defer c.mu.RUnlock()

	current := string(Key(""))
	var stale [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if key := it.Item().KeyCopy(nil); !strings.HasPrefix(string(key), current) {
				stale = append(stale, key)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	if len(stale) > 0 {
		c.logger.Info("pruned stale cache entries", "count", len(stale))
	}
	return len(stale), nil
}

// Close stops garbage collection and closes the store. Further calls
// return errors.ErrCacheClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.stopGC != nil {
		close(c.stopGC)
		<-c.gcDone
	}
	return c.db.Close()
}

// check takes the read lock on success; callers release it.
func (c *Cache) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return errors.ErrCacheClosed
	}
	return nil
}

func (c *Cache) runGC(interval time.Duration, ratio float64) {
	defer close(c.gcDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopGC:
			return
		case <-ticker.C:
			err := c.db.RunValueLogGC(ratio)
			switch {
			case err == nil:
				c.logger.Debug("value log GC completed")
			case !errors.Is(err, badger.ErrNoRewrite):
				c.logger.Warn("value log GC failed", "error", err)
			}
		}
	}
}
