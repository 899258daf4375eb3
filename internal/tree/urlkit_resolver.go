package tree

import (
	"context"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// URLKitResolverOptions configures the go-urlkit backed resolver.
type URLKitResolverOptions struct {
	Manager      *urlkit.RouteManager
	DefaultGroup string
	LocaleGroups map[string]string
	LocaleParam  string
}

// URLKitResolver resolves route urls using a go-urlkit RouteManager.
type URLKitResolver struct {
	manager *urlkit.RouteManager

	defaultGroup string
	localeGroups map[string]string
	localeParam  string

	groupCache map[string]*urlkit.Group
	mu         sync.RWMutex
}

// NewURLKitResolver constructs a resolver backed by go-urlkit.
func NewURLKitResolver(opts URLKitResolverOptions) *URLKitResolver {
	groups := make(map[string]string, len(opts.LocaleGroups))
	for locale, path := range opts.LocaleGroups {
		groups[strings.ToLower(strings.TrimSpace(locale))] = strings.TrimSpace(path)
	}
	return &URLKitResolver{
		manager: opts.Manager,

		defaultGroup: strings.TrimSpace(opts.DefaultGroup),
		localeGroups: groups,
		localeParam:  strings.TrimSpace(opts.LocaleParam),

		groupCache: make(map[string]*urlkit.Group),
	}
}

// Resolve builds the url for req.Route in the group mapped to req.Locale.
func (r *URLKitResolver) Resolve(_ context.Context, req ResolveRequest) (string, error) {
	if r == nil || r.manager == nil || strings.TrimSpace(req.Route) == "" {
		return "", nil
	}

	groupPath := r.defaultGroup
	if path, ok := r.localeGroups[strings.ToLower(strings.TrimSpace(req.Locale))]; ok && path != "" {
		groupPath = path
	}
	if groupPath == "" {
		return "", nil
	}

	group, err := r.groupForPath(groupPath)
	if err != nil {
		return "", err
	}

	builder, err := safeBuilder(group, strings.TrimSpace(req.Route))
	if err != nil {
		return "", err
	}
	for key, val := range req.Params {
		builder.WithParam(key, val)
	}
	if r.localeParam != "" && strings.TrimSpace(req.Locale) != "" {
		if _, set := req.Params[r.localeParam]; !set {
			builder.WithParam(r.localeParam, strings.TrimSpace(req.Locale))
		}
	}
	return builder.Build()
}

func (r *URLKitResolver) groupForPath(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[path]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[path] = current
	r.mu.Unlock()
	return current, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("tree: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("tree: urlkit route %q not found: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("tree: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("tree: route group %q not found", name)
	}
	return group, nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("tree: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	if group == nil {
		return nil, fmt.Errorf("tree: child group %q not found", name)
	}
	return group, nil
}
