package suggestion

import (
	"time"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

// Search outcomes reported to metrics.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeStale   = "stale"
)

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() interfaces.SuggestionMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveSearchDuration(string, time.Duration) {}

func (noopMetrics) IncrementStaleResponse() {}
