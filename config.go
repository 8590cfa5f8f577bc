package lore

import "github.com/goliatone/go-lore/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown    = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDialectUnknown     = runtimeconfig.ErrStorageDialectUnknown
	ErrStorageDSNRequired        = runtimeconfig.ErrStorageDSNRequired
	ErrSuggestionDebounce        = runtimeconfig.ErrSuggestionDebounce
	ErrSuggestionLimit           = runtimeconfig.ErrSuggestionLimit
	ErrSuggestionSearcherUnknown = runtimeconfig.ErrSuggestionSearcherUnknown
	ErrRenderSchemeUnsupported   = runtimeconfig.ErrRenderSchemeUnsupported
	ErrNavigationRouteRequired   = runtimeconfig.ErrNavigationRouteRequired
	ErrNavigationTemplateID      = runtimeconfig.ErrNavigationTemplateID
	ErrCacheTTLInvalid           = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	RenderConfig         = runtimeconfig.RenderConfig
	SuggestionConfig     = runtimeconfig.SuggestionConfig
	NavigationConfig     = runtimeconfig.NavigationConfig
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	MetricsConfig        = runtimeconfig.MetricsConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
