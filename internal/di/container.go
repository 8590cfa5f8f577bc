package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	contentcmd "github.com/goliatone/go-lore/internal/commands/content"
	"github.com/goliatone/go-lore/internal/content"
	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/internal/logging/console"
	"github.com/goliatone/go-lore/internal/logging/gologger"
	"github.com/goliatone/go-lore/internal/markdown"
	"github.com/goliatone/go-lore/internal/metrics"
	"github.com/goliatone/go-lore/internal/navigation"
	"github.com/goliatone/go-lore/internal/render"
	"github.com/goliatone/go-lore/internal/runtimeconfig"
	"github.com/goliatone/go-lore/internal/search"
	"github.com/goliatone/go-lore/internal/suggestion"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// Container wires module dependencies from a Config.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	registry    *prometheus.Registry
	prometheus  *metrics.Prometheus
	renderStats interfaces.RenderMetrics
	searchStats interfaces.SuggestionMetrics

	codec       *markdown.Codec
	parser      *markdown.GoldmarkParser
	highlighter interfaces.Highlighter
	renderer    *render.Renderer

	store    interfaces.ContentStore
	index    *search.Index
	cached   *search.Cached
	searcher interfaces.CandidateSearcher

	routeManager *urlkit.RouteManager
	navigator    interfaces.Navigator
	clock        suggestion.Clock

	commands *contentcmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithLogWriter sets where the console provider writes. Defaults to stderr.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		c.logWriter = w
	}
}

// WithBunDB supplies an open database for the bun store. The caller keeps
// ownership and closes it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithContentStore overrides the content store.
func WithContentStore(store interfaces.ContentStore) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithSearcher overrides the candidate searcher used by suggestion sessions.
func WithSearcher(searcher interfaces.CandidateSearcher) Option {
	return func(c *Container) {
		c.searcher = searcher
	}
}

// WithNavigator overrides the navigator handed to the renderer.
func WithNavigator(nav interfaces.Navigator) Option {
	return func(c *Container) {
		c.navigator = nav
	}
}

// WithHighlighter overrides the renderer's syntax highlighter.
func WithHighlighter(h interfaces.Highlighter) Option {
	return func(c *Container) {
		c.highlighter = h
	}
}

// WithMetricsRegistry registers prometheus collectors on registry.
func WithMetricsRegistry(registry *prometheus.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

// WithClock overrides the timer factory used by suggestion sessions.
func WithClock(clock suggestion.Clock) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// NewContainer validates cfg and builds every service it describes.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:    cfg,
		logWriter: os.Stderr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLogging,
		c.configureMetrics,
		c.configureRendering,
		c.configureCacheDefaults,
		c.configureStorage,
		c.configureSearch,
		c.configureNavigation,
		c.configureCommands,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	case "console":
		opts := console.Options{Writer: c.logWriter}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureMetrics() error {
	c.renderStats = render.NoOpMetrics()
	c.searchStats = suggestion.NoOpMetrics()
	if !c.Config.Metrics.Enabled {
		return nil
	}
	prom, err := metrics.NewPrometheus(c.registry, c.Config.Metrics.Namespace)
	if err != nil {
		return fmt.Errorf("di: register metrics: %w", err)
	}
	c.prometheus = prom
	c.renderStats = prom
	c.searchStats = prom
	return nil
}

func (c *Container) configureRendering() error {
	c.codec = markdown.NewCodec(markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)))

	parserCfg := c.Config.Markdown.Parser
	c.parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
		Extensions: parserCfg.Extensions,
		HardWraps:  parserCfg.HardWraps,
		SafeMode:   parserCfg.SafeMode,
	})

	if c.highlighter == nil {
		if c.Config.Render.Highlight {
			c.highlighter = render.NewHighlighter()
		} else {
			c.highlighter = render.PlainHighlighter()
		}
	}

	opts := []render.RendererOption{
		render.WithCodec(c.codec),
		render.WithHighlighter(c.highlighter),
		render.WithLogger(logging.RenderLogger(c.loggerProvider)),
		render.WithMetrics(c.renderStats),
		render.WithPolicyPass(c.Config.Render.SanitizePass),
	}
	if len(c.Config.Render.LinkSchemes) > 0 {
		opts = append(opts, render.WithSanitizer(render.NewSanitizerWithSchemes(c.Config.Render.LinkSchemes...)))
	}
	c.renderer = render.NewRenderer(opts...)
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		return nil
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureStorage() error {
	if c.store != nil {
		return nil
	}
	storeLogger := logging.ContentLogger(c.loggerProvider)

	if c.bunDB == nil && strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), "bun") {
		db, err := content.OpenBunDB(c.Config.Storage.Dialect, c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	if c.bunDB == nil {
		c.store = content.NewMemoryStore()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := content.EnsureSchema(ctx, c.bunDB); err != nil {
		return fmt.Errorf("di: ensure schema: %w", err)
	}

	opts := []content.BunStoreOption{
		content.WithStoreLogger(storeLogger),
		content.WithSearchLimit(c.Config.Suggestion.Limit),
	}
	if c.cacheService != nil {
		opts = append(opts, content.WithCache(c.cacheService, c.keySerializer))
	}
	c.store = content.NewBunStore(c.bunDB, opts...)
	return nil
}

func (c *Container) configureSearch() error {
	searchLogger := logging.SearchLogger(c.loggerProvider)
	c.index = search.NewIndex(
		search.WithLimit(c.Config.Suggestion.Limit),
		search.WithLogger(searchLogger),
	)
	if c.searcher != nil {
		return nil
	}

	var inner interfaces.CandidateSearcher = c.index
	if strings.EqualFold(strings.TrimSpace(c.Config.Suggestion.Searcher), "store") {
		storeSearcher, ok := c.store.(interfaces.CandidateSearcher)
		if !ok {
			return errors.New("di: configured content store cannot search candidates")
		}
		inner = storeSearcher
	}

	if c.Config.Suggestion.CacheTTL > 0 {
		c.cached = search.NewCached(inner, nil, c.Config.Suggestion.CacheTTL, search.WithCacheLogger(searchLogger))
		c.searcher = c.cached
		return nil
	}
	c.searcher = inner
	return nil
}

func (c *Container) configureNavigation() error {
	if c.navigator != nil {
		return nil
	}
	navCfg := c.Config.Navigation
	if navCfg.RouteConfig != nil {
		c.routeManager = urlkit.NewRouteManager(navCfg.RouteConfig)
	}
	return nil
}

func (c *Container) configureCommands() error {
	deps := contentcmd.Dependencies{
		Store:   c.store,
		Codec:   c.codec,
		Indexer: c.Indexer(),
	}
	if cards, ok := c.store.(interfaces.CardWriter); ok {
		deps.Cards = cards
	}
	if c.prometheus != nil {
		deps.Metrics = c.prometheus
	}
	set, err := contentcmd.RegisterContentCommands(nil, deps, c.loggerProvider)
	if err != nil {
		return err
	}
	c.commands = set
	return nil
}

// LoggerProvider exposes the configured logger provider. It may be nil when
// logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Codec returns the markdown document codec.
func (c *Container) Codec() *markdown.Codec {
	return c.codec
}

// RawParser returns the trusted markdown-to-HTML parser.
func (c *Container) RawParser() *markdown.GoldmarkParser {
	return c.parser
}

// Renderer returns the sanitizing renderer.
func (c *Container) Renderer() *render.Renderer {
	return c.renderer
}

// ContentStore returns the persistence collaborator.
func (c *Container) ContentStore() interfaces.ContentStore {
	return c.store
}

// Searcher returns the candidate searcher used by suggestion sessions.
func (c *Container) Searcher() interfaces.CandidateSearcher {
	return c.searcher
}

// Indexer returns the indexer that keeps the configured searcher current.
// Writes go through the cache decorator so cached results are invalidated.
func (c *Container) Indexer() interfaces.CandidateIndexer {
	if indexer, ok := c.searcher.(interfaces.CandidateIndexer); ok {
		return indexer
	}
	return c.index
}

// Navigator returns the navigator for scopeID.
func (c *Container) Navigator(scopeID string) interfaces.Navigator {
	if c.navigator != nil {
		return c.navigator
	}
	navCfg := c.Config.Navigation
	if c.routeManager != nil {
		return navigation.NewURLKitNavigator(navigation.URLKitOptions{
			Manager:    c.routeManager,
			Group:      navCfg.Group,
			Route:      navCfg.Route,
			IDParam:    navCfg.IDParam,
			ScopeParam: navCfg.ScopeParam,
			ScopeID:    scopeID,
		})
	}
	return navigation.NewPathNavigator(navCfg.PathTemplate, scopeID)
}

// NewSession opens a suggestion session for scopeID with the configured
// debounce, limit, logger and metrics.
func (c *Container) NewSession(scopeID string, opts ...suggestion.Option) *suggestion.Session {
	base := []suggestion.Option{
		suggestion.WithDebounce(c.Config.Suggestion.Debounce),
		suggestion.WithLimit(c.Config.Suggestion.Limit),
		suggestion.WithLogger(logging.SuggestionLogger(c.loggerProvider)),
		suggestion.WithMetrics(c.searchStats),
	}
	if c.clock != nil {
		base = append(base, suggestion.WithClock(c.clock))
	}
	return suggestion.NewSession(c.searcher, scopeID, append(base, opts...)...)
}

// Commands returns the content command handlers.
func (c *Container) Commands() *contentcmd.HandlerSet {
	return c.commands
}

// Metrics returns the prometheus recorders, or nil when metrics are disabled.
func (c *Container) Metrics() *metrics.Prometheus {
	return c.prometheus
}

// Close releases the search index and any database the container opened.
func (c *Container) Close() error {
	var errs []error
	if c.index != nil {
		errs = append(errs, c.index.Close())
	}
	if c.ownsDB && c.bunDB != nil {
		errs = append(errs, c.bunDB.Close())
	}
	return errors.Join(errs...)
}
