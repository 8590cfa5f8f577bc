// Package navigation resolves mention targets into locations the renderer
// can link to.
package navigation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

// ErrUnknownTarget is returned when a navigator has no location for an id.
var ErrUnknownTarget = errors.New("navigation: unknown target")

// URLKitOptions configures the go-urlkit backed navigator.
type URLKitOptions struct {
	Manager *urlkit.RouteManager
	// Group is a dotted group path such as "frontend" or "frontend.es".
	Group      string
	Route      string
	IDParam    string
	ScopeParam string
	ScopeID    string
}

// URLKitNavigator builds card URLs from a go-urlkit RouteManager.
type URLKitNavigator struct {
	manager    *urlkit.RouteManager
	group      string
	route      string
	idParam    string
	scopeParam string
	scopeID    string

	mu    sync.Mutex
	cache *urlkit.Group
}

// NewURLKitNavigator constructs a navigator backed by go-urlkit.
func NewURLKitNavigator(opts URLKitOptions) *URLKitNavigator {
	if opts.IDParam == "" {
		opts.IDParam = "id"
	}
	if opts.Route == "" {
		opts.Route = "card"
	}
	return &URLKitNavigator{
		manager:    opts.Manager,
		group:      strings.TrimSpace(opts.Group),
		route:      strings.TrimSpace(opts.Route),
		idParam:    strings.TrimSpace(opts.IDParam),
		scopeParam: strings.TrimSpace(opts.ScopeParam),
		scopeID:    strings.TrimSpace(opts.ScopeID),
	}
}

var _ interfaces.Navigator = (*URLKitNavigator)(nil)

// ForScope returns a copy bound to another scope.
func (n *URLKitNavigator) ForScope(scopeID string) *URLKitNavigator {
	return &URLKitNavigator{
		manager:    n.manager,
		group:      n.group,
		route:      n.route,
		idParam:    n.idParam,
		scopeParam: n.scopeParam,
		scopeID:    strings.TrimSpace(scopeID),
	}
}

// Locate builds the URL for id.
func (n *URLKitNavigator) Locate(id string) (string, error) {
	id = strings.TrimSpace(id)
	if n == nil || n.manager == nil || id == "" {
		return "", ErrUnknownTarget
	}
	group, err := n.resolveGroup()
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, n.route)
	if err != nil {
		return "", err
	}
	builder.WithParam(n.idParam, id)
	if n.scopeParam != "" && n.scopeID != "" {
		builder.WithParam(n.scopeParam, n.scopeID)
	}
	return builder.Build()
}

func (n *URLKitNavigator) resolveGroup() (*urlkit.Group, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cache != nil {
		return n.cache, nil
	}
	if n.group == "" {
		return nil, fmt.Errorf("navigation: route group not configured")
	}
	parts := strings.Split(n.group, ".")
	current, err := lookupGroup(n.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}
	n.cache = current
	return current, nil
}

// go-urlkit panics on unknown groups and routes; these helpers turn that
// into errors.

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("navigation: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigation: urlkit route %q: %v", route, rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigation: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("navigation: route group %q not found", name)
	}
	return group, err
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigation: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	if group == nil {
		return nil, fmt.Errorf("navigation: child group %q not found", name)
	}
	return group, err
}
