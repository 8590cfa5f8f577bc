package interfaces

import "time"

// RenderMetrics captures renderer observations.
type RenderMetrics interface {
	ObserveRenderDuration(duration time.Duration)
	IncrementSanitized(reason string)
}

// SuggestionMetrics captures suggestion session observations.
type SuggestionMetrics interface {
	ObserveSearchDuration(outcome string, duration time.Duration)
	IncrementStaleResponse()
}
