// Package store is the durable row store for claims and analyses. It wraps
// an embedded BadgerDB instance with one keyed table per record family,
// an in-memory read cache, and a change hub that drives the reactive query
// layer after every committed write.
//
// The store is the single serialization point for durable state: every
// operation is one Badger transaction, so a put either fully applies or
// not at all, and batch inserts commit as a whole.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/stigmahq/stigma-core/internal/reactive"
)

const (
	claimPrefix    = "claim:"
	analysisPrefix = "analysis:"

	defaultCacheTTL = 5 * time.Minute
)

// Config holds configuration for the store.
type Config struct {
	// Path is the directory for database files. Required unless InMemory.
	Path string

	// InMemory disables disk persistence. Used by tests.
	InMemory bool

	// SyncWrites makes each commit durable before returning.
	SyncWrites bool

	// CacheTTL bounds how long a row may be served from the read cache.
	// Zero means the default of five minutes.
	CacheTTL time.Duration

	// Logger receives Badger's internal log output. Nil disables it.
	Logger *slog.Logger
}

// DefaultConfig returns production settings: synchronous writes, default
// cache TTL.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns settings for tests: no disk I/O, no sync.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store owns the database and the per-family tables and hubs.
type Store struct {
	db       *badger.DB
	claims   *Table[ClaimRow]
	analyses *Table[AnalysisRow]
}

// Open opens the database and prepares both record families.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	cache := gocache.New(ttl, 2*ttl)

	return &Store{
		db: db,
		claims: newTable[ClaimRow](db, claimPrefix, cache, reactive.NewHub(),
			func(a, b ClaimRow) bool { return a.CreatedAt > b.CreatedAt }),
		analyses: newTable[AnalysisRow](db, analysisPrefix, cache, reactive.NewHub(),
			func(a, b AnalysisRow) bool { return a.CompletedAt > b.CompletedAt }),
	}, nil
}

// Claims returns the claim record family.
func (s *Store) Claims() *Table[ClaimRow] { return s.claims }

// Analyses returns the analysis record family.
func (s *Store) Analyses() *Table[AnalysisRow] { return s.analyses }

// Close releases the database. The store must not be used afterwards.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger adapts slog to Badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
