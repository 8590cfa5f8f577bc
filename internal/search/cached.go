package search

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// DefaultCacheTTL bounds how long a result set is reused.
const DefaultCacheTTL = 30 * time.Second

// Cached memoizes successful searches of an inner searcher. Failures are
// never cached so the next keystroke retries the collaborator.
type Cached struct {
	inner  interfaces.CandidateSearcher
	cache  interfaces.CacheProvider
	ttl    time.Duration
	logger interfaces.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// CachedOption configures a Cached searcher.
type CachedOption func(*Cached)

// WithCacheLogger attaches a logger to the decorator.
func WithCacheLogger(logger interfaces.Logger) CachedOption {
	return func(c *Cached) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCached wraps inner. A nil cache gets a private MemoryCache.
func NewCached(inner interfaces.CandidateSearcher, cache interfaces.CacheProvider, ttl time.Duration, opts ...CachedOption) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if cache == nil {
		cache = NewMemoryCache(ttl, 2*ttl)
	}
	c := &Cached{
		inner:       inner,
		cache:       cache,
		ttl:         ttl,
		logger:      logging.NoOp(),
		generations: map[string]uint64{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ interfaces.CandidateSearcher = (*Cached)(nil)
	_ interfaces.CandidateIndexer  = (*Cached)(nil)
)

func (c *Cached) FindCandidates(ctx context.Context, scopeID, query string) ([]interfaces.Candidate, error) {
	key := c.key(scopeID, query)
	if cached, err := c.cache.Get(ctx, key); err == nil && cached != nil {
		if candidates, ok := cached.([]interfaces.Candidate); ok {
			c.logger.Debug("search.cache.hit", "scope_id", scopeID)
			return append([]interfaces.Candidate(nil), candidates...), nil
		}
	}

	candidates, err := c.inner.FindCandidates(ctx, scopeID, query)
	if err != nil {
		return nil, err
	}
	stored := append([]interfaces.Candidate(nil), candidates...)
	if err := c.cache.Set(ctx, key, stored, c.ttl); err != nil {
		c.logger.Warn("search.cache.store_failed", "error", err)
	}
	return candidates, nil
}

// IndexCandidate forwards to the inner searcher when it accepts new entries
// and invalidates every cached result for the scope.
func (c *Cached) IndexCandidate(ctx context.Context, scopeID string, candidate interfaces.Candidate) error {
	if indexer, ok := c.inner.(interfaces.CandidateIndexer); ok {
		if err := indexer.IndexCandidate(ctx, scopeID, candidate); err != nil {
			return err
		}
	}
	c.Invalidate(scopeID)
	return nil
}

// Invalidate drops cached results for scopeID.
func (c *Cached) Invalidate(scopeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[scopeID]++
}

func (c *Cached) key(scopeID, query string) string {
	c.mu.Lock()
	generation := c.generations[scopeID]
	c.mu.Unlock()
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return "candidates:" + scopeID + ":" + strconv.FormatUint(generation, 10) + ":" + normalized
}
