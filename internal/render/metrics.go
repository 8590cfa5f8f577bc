package render

import (
	"time"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() interfaces.RenderMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveRenderDuration(time.Duration) {}

func (noopMetrics) IncrementSanitized(string) {}
