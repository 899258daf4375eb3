package tree

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-navtree/internal/nodes"
)

// RoutePrefix marks node urls that are resolved through a URLResolver.
// The remainder is a route name optionally followed by "?param=value".
const RoutePrefix = "route:"

// ResolveRequest carries the context required for URL resolvers to build links.
type ResolveRequest struct {
	Route  string
	Params map[string]string
	Node   *nodes.Node
	Locale string
}

// URLResolver allows callers to override how route urls are generated.
type URLResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (string, error)
}

// ParseRoute splits a "route:name?k=v" url into its route name and params.
func ParseRoute(raw string) (string, map[string]string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), RoutePrefix)
	if !ok {
		return "", nil, false
	}
	name, query, _ := strings.Cut(rest, "?")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, false
	}
	params := make(map[string]string)
	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return "", nil, false
		}
		for key := range values {
			params[key] = values.Get(key)
		}
	}
	return name, params, true
}

// ResolveURL returns the display url of node under opts. Route urls go
// through the configured resolver and fall back to the raw value when
// they cannot be built; the site url placeholder is substituted.
func ResolveURL(ctx context.Context, node *nodes.Node, opts Options) string {
	if node == nil {
		return ""
	}
	raw := strings.TrimSpace(node.URL)
	if name, params, ok := ParseRoute(raw); ok {
		if opts.Resolver == nil {
			return raw
		}
		locale := opts.Locale
		if locale == "" {
			locale = node.Locale
		}
		resolved, err := opts.Resolver.Resolve(ctx, ResolveRequest{
			Route:  name,
			Params: params,
			Node:   node,
			Locale: locale,
		})
		if err != nil || resolved == "" {
			return raw
		}
		return resolved
	}
	if !strings.Contains(raw, nodes.SiteURLPlaceholder) {
		return raw
	}
	resolved := strings.ReplaceAll(raw, nodes.SiteURLPlaceholder, siteBase(opts.SiteURL))
	if opts.TrailingSlash {
		resolved = withTrailingSlash(resolved)
	}
	return resolved
}

func siteBase(site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return "/"
	}
	if !strings.HasSuffix(site, "/") {
		site += "/"
	}
	return site
}

func withTrailingSlash(raw string) string {
	path, suffix := raw, ""
	if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
		path, suffix = raw[:idx], raw[idx:]
	}
	if path == "" || strings.HasSuffix(path, "/") {
		return raw
	}
	return path + "/" + suffix
}
