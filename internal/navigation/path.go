package navigation

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

// DefaultPathTemplate is the card location used when none is configured.
const DefaultPathTemplate = "/projects/{scope}/cards/{id}"

// PathNavigator fills a path template with the scope and card id.
type PathNavigator struct {
	template string
	scopeID  string
	exists   func(id string) bool
}

// PathOption configures a PathNavigator.
type PathOption func(*PathNavigator)

// WithExistence limits resolution to ids accepted by exists. Unknown ids
// resolve to ErrUnknownTarget so the renderer shows an inert badge.
func WithExistence(exists func(id string) bool) PathOption {
	return func(p *PathNavigator) {
		p.exists = exists
	}
}

// NewPathNavigator builds a navigator for scopeID. An empty template uses
// DefaultPathTemplate.
func NewPathNavigator(template, scopeID string, opts ...PathOption) *PathNavigator {
	if strings.TrimSpace(template) == "" {
		template = DefaultPathTemplate
	}
	p := &PathNavigator{template: template, scopeID: strings.TrimSpace(scopeID)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ interfaces.Navigator = (*PathNavigator)(nil)

// Locate returns the path for id.
func (p *PathNavigator) Locate(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrUnknownTarget
	}
	if p.exists != nil && !p.exists(id) {
		return "", ErrUnknownTarget
	}
	replacer := strings.NewReplacer(
		"{scope}", url.PathEscape(p.scopeID),
		"{id}", url.PathEscape(id),
	)
	return replacer.Replace(p.template), nil
}
