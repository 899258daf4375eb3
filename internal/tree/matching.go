package tree

import (
	"strings"

	"github.com/goliatone/go-navtree/internal/nodes"
)

// pathMatcher holds the candidate paths a node url is compared with.
type pathMatcher struct {
	site       string
	candidates map[string]struct{}
}

// newPathMatcher prepares the active path for matching. The full path is
// always a candidate; unless fullOnly is set every left-anchored segment
// prefix is one too, so "/a/b/c" also activates "/a" and "/a/b".
func newPathMatcher(activePath, siteURL string, fullOnly bool) *pathMatcher {
	m := &pathMatcher{site: siteBase(siteURL)}
	path, ok := m.normalize(activePath)
	if !ok {
		return m
	}
	m.candidates = map[string]struct{}{path: {}}
	if fullOnly || path == "/" {
		return m
	}
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	prefix := ""
	for _, segment := range segments[:len(segments)-1] {
		prefix += "/" + segment
		m.candidates[prefix] = struct{}{}
	}
	return m
}

func (m *pathMatcher) enabled() bool {
	return m != nil && len(m.candidates) > 0
}

// matches reports whether a resolved node url hits the active path.
func (m *pathMatcher) matches(resolvedURL string) bool {
	if !m.enabled() || strings.TrimSpace(resolvedURL) == "" {
		return false
	}
	path, ok := m.normalize(resolvedURL)
	if !ok {
		return false
	}
	_, hit := m.candidates[path]
	return hit
}

// normalize reduces a url to a site-relative path with a leading slash and
// no trailing slash. Urls pointing at another host are not matchable.
func (m *pathMatcher) normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if idx := strings.IndexAny(raw, "#?"); idx >= 0 {
		raw = raw[:idx]
	}
	if raw == "" {
		return "", false
	}
	raw = strings.ReplaceAll(raw, nodes.SiteURLPlaceholder, m.site)
	if m.site != "/" {
		if rest, ok := strings.CutPrefix(raw, m.site); ok {
			raw = rest
		} else if raw+"/" == m.site {
			raw = ""
		}
	}
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "//") {
		return "", false
	}
	if strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") {
		return "", false
	}
	raw = strings.TrimRight(raw, "/")
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return raw, true
}

// segments splits a path into its non-empty segments.
func segments(path string) []string {
	var out []string
	for _, part := range strings.Split(path, "/") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
