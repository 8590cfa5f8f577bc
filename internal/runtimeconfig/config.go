package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrStorageProviderUnknown    = errors.New("lore config: storage provider is invalid")
	ErrStorageDialectUnknown     = errors.New("lore config: storage dialect is invalid")
	ErrStorageDSNRequired        = errors.New("lore config: storage dsn is required for the bun provider")
	ErrSuggestionDebounce        = errors.New("lore config: suggestion debounce must be zero or positive")
	ErrSuggestionLimit           = errors.New("lore config: suggestion limit must be zero or positive")
	ErrSuggestionSearcherUnknown = errors.New("lore config: suggestion searcher is invalid")
	ErrRenderSchemeUnsupported   = errors.New("lore config: render scheme is not supported")
	ErrNavigationRouteRequired   = errors.New("lore config: navigation group and route are required when route config is set")
	ErrNavigationTemplateID      = errors.New("lore config: navigation path template must contain {id}")
	ErrCacheTTLInvalid           = errors.New("lore config: cache ttl must be zero or positive")
	ErrLoggingProviderRequired   = errors.New("lore config: logging provider is required")
	ErrLoggingProviderUnknown    = errors.New("lore config: logging provider is invalid")
	ErrLoggingLevelInvalid       = errors.New("lore config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("lore config: logging format is invalid")
)

// Config aggregates the settings for the authoring and rendering pipeline.
// Field types stay simple so viper can decode them from files and flags.
type Config struct {
	Markdown   MarkdownConfig   `mapstructure:"markdown"`
	Render     RenderConfig     `mapstructure:"render"`
	Suggestion SuggestionConfig `mapstructure:"suggestion"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// MarkdownConfig captures loader and raw-HTML parser behaviour.
type MarkdownConfig struct {
	ContentDir string               `mapstructure:"content_dir"`
	Pattern    string               `mapstructure:"pattern"`
	Recursive  bool                 `mapstructure:"recursive"`
	Parser     MarkdownParserConfig `mapstructure:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions.
type MarkdownParserConfig struct {
	Extensions []string `mapstructure:"extensions"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}

// RenderConfig controls the sanitizing renderer.
type RenderConfig struct {
	// LinkSchemes narrows the link allow-list. entity is always kept.
	LinkSchemes []string `mapstructure:"link_schemes"`
	Highlight   bool     `mapstructure:"highlight"`
	// SanitizePass runs the HTML policy over rendered markup.
	SanitizePass bool `mapstructure:"sanitize_pass"`
}

// SuggestionConfig tunes suggestion sessions and their searcher.
type SuggestionConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Limit    int           `mapstructure:"limit"`
	// Searcher selects the candidate source: index or store.
	Searcher string        `mapstructure:"searcher"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// NavigationConfig selects how mention targets become links. When
// RouteConfig is set the go-urlkit navigator is used, otherwise PathTemplate.
type NavigationConfig struct {
	RouteConfig  *urlkit.Config `mapstructure:"route_config"`
	Group        string         `mapstructure:"group"`
	Route        string         `mapstructure:"route"`
	IDParam      string         `mapstructure:"id_param"`
	ScopeParam   string         `mapstructure:"scope_param"`
	PathTemplate string         `mapstructure:"path_template"`
}

// StorageConfig chooses the content store.
type StorageConfig struct {
	Provider string `mapstructure:"provider"`
	Dialect  string `mapstructure:"dialect"`
	DSN      string `mapstructure:"dsn"`
}

// CacheConfig captures repository cache toggles.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// MetricsConfig toggles the prometheus recorders.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Markdown: MarkdownConfig{
			ContentDir: "content",
			Pattern:    "*.md",
			Recursive:  true,
		},
		Render: RenderConfig{
			LinkSchemes:  []string{"http", "https", "entity"},
			Highlight:    true,
			SanitizePass: true,
		},
		Suggestion: SuggestionConfig{
			Debounce: 300 * time.Millisecond,
			Limit:    10,
			Searcher: "index",
			CacheTTL: 30 * time.Second,
		},
		Navigation: NavigationConfig{
			Route:        "card",
			IDParam:      "id",
			ScopeParam:   "scope",
			PathTemplate: "/projects/{scope}/cards/{id}",
		},
		Storage: StorageConfig{
			Provider: "memory",
			Dialect:  "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Metrics: MetricsConfig{
			Namespace: "lore",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Provider) {
	case "memory":
	case "bun":
		switch normalize(cfg.Storage.Dialect) {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, cfg.Storage.Dialect)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Suggestion.Debounce < 0 {
		return ErrSuggestionDebounce
	}
	if cfg.Suggestion.Limit < 0 {
		return ErrSuggestionLimit
	}
	switch normalize(cfg.Suggestion.Searcher) {
	case "", "index", "store":
	default:
		return fmt.Errorf("%w: %s", ErrSuggestionSearcherUnknown, cfg.Suggestion.Searcher)
	}
	if cfg.Suggestion.CacheTTL < 0 || cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}

	for _, scheme := range cfg.Render.LinkSchemes {
		switch normalize(scheme) {
		case "http", "https", "entity":
		default:
			return fmt.Errorf("%w: %s", ErrRenderSchemeUnsupported, scheme)
		}
	}

	if cfg.Navigation.RouteConfig != nil {
		if strings.TrimSpace(cfg.Navigation.Group) == "" || strings.TrimSpace(cfg.Navigation.Route) == "" {
			return ErrNavigationRouteRequired
		}
	} else if tpl := strings.TrimSpace(cfg.Navigation.PathTemplate); tpl != "" && !strings.Contains(tpl, "{id}") {
		return ErrNavigationTemplateID
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "none":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
