// Package structures serves assembled navigation trees addressed by handle.
package structures

import (
	"context"
	"strings"

	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/internal/navigations"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/goliatone/go-navtree/internal/tree"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
)

// Structure is an assembled navigation together with the parameters a
// renderer needs.
type Structure struct {
	Navigation   *navigations.Navigation `json:"navigation"`
	Locale       string                  `json:"locale"`
	Presentation map[string]any          `json:"presentation,omitempty"`
	Nodes        []tree.TreeNode         `json:"nodes"`
}

// Service answers structure queries.
type Service interface {
	GetNavRaw(ctx context.Context, handle string, params Params, locale string) ([]tree.TreeNode, error)
	GetNav(ctx context.Context, handle string, params Params, locale string) (*Structure, error)
	// GetActiveNodeIDForLevel returns false when no node matches the first
	// level segments of path.
	GetActiveNodeIDForLevel(ctx context.Context, handle string, level int, locale, path string) (uuid.UUID, bool, error)
	ParentOptions(ctx context.Context, handle, locale string, exclude *uuid.UUID) ([]tree.ParentOption, error)
}

// NavigationFinder resolves navigations by handle.
type NavigationFinder interface {
	GetByHandle(ctx context.Context, handle string) (*navigations.Navigation, error)
}

// NodeLister lists the flat nodes of a navigation locale.
type NodeLister interface {
	List(ctx context.Context, navigationID uuid.UUID, locale string) ([]*nodes.Node, error)
}

// ServiceOption configures the structure service.
type ServiceOption func(*service)

// WithSiteURL sets the url substituted for the site placeholder.
func WithSiteURL(siteURL string) ServiceOption {
	return func(s *service) {
		s.siteURL = strings.TrimSpace(siteURL)
	}
}

// WithLocaleSiteURLs overrides the site url per locale.
func WithLocaleSiteURLs(urls map[string]string) ServiceOption {
	return func(s *service) {
		for locale, url := range urls {
			s.localeSiteURLs[strings.ToLower(strings.TrimSpace(locale))] = strings.TrimSpace(url)
		}
	}
}

// WithTrailingSlash appends a slash to site relative urls.
func WithTrailingSlash(enabled bool) ServiceOption {
	return func(s *service) {
		s.trailingSlash = enabled
	}
}

// WithDefaultLocale sets the locale used when callers leave it empty.
func WithDefaultLocale(locale string) ServiceOption {
	return func(s *service) {
		s.defaultLocale = strings.TrimSpace(locale)
	}
}

// WithURLResolver resolves "route:" node urls.
func WithURLResolver(resolver tree.URLResolver) ServiceOption {
	return func(s *service) {
		s.resolver = resolver
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	navigations    NavigationFinder
	nodes          NodeLister
	resolver       tree.URLResolver
	logger         interfaces.Logger
	siteURL        string
	localeSiteURLs map[string]string
	trailingSlash  bool
	defaultLocale  string
}

// NewService constructs a structure query service.
func NewService(navs NavigationFinder, lister NodeLister, opts ...ServiceOption) Service {
	s := &service{
		navigations:    navs,
		nodes:          lister,
		logger:         logging.NoOp(),
		localeSiteURLs: make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) GetNavRaw(ctx context.Context, handle string, params Params, locale string) ([]tree.TreeNode, error) {
	structure, err := s.GetNav(ctx, handle, params, locale)
	if err != nil {
		return nil, err
	}
	return structure.Nodes, nil
}

func (s *service) GetNav(ctx context.Context, handle string, params Params, locale string) (*Structure, error) {
	nav, flat, locale, err := s.load(ctx, handle, locale)
	if err != nil {
		return nil, err
	}

	activePath := params.ActivePath
	if activePath == "" {
		activePath = ActivePathFrom(ctx)
	}
	opts := s.options(locale)
	opts.StartFromID = params.StartFromID
	opts.MaxLevel = params.MaxLevel
	opts.OverrideStatus = params.OverrideStatus
	opts.ActivePath = activePath
	opts.IgnoreActiveChilds = params.IgnoreActiveChilds

	built := tree.Build(ctx, flat, opts)
	logging.WithNavigationContext(s.logger.WithContext(ctx), nav.ID.String(), locale, "").
		Debug("structure.built", "handle", nav.Handle, "nodes", len(flat), "roots", len(built))

	return &Structure{
		Navigation:   nav,
		Locale:       locale,
		Presentation: params.Presentation,
		Nodes:        built,
	}, nil
}

func (s *service) GetActiveNodeIDForLevel(ctx context.Context, handle string, level int, locale, path string) (uuid.UUID, bool, error) {
	_, flat, locale, err := s.load(ctx, handle, locale)
	if err != nil {
		return uuid.Nil, false, err
	}
	if path == "" {
		path = ActivePathFrom(ctx)
	}
	id, ok := tree.ActiveNodeIDForLevel(ctx, flat, path, level, s.options(locale))
	return id, ok, nil
}

func (s *service) ParentOptions(ctx context.Context, handle, locale string, exclude *uuid.UUID) ([]tree.ParentOption, error) {
	nav, flat, _, err := s.load(ctx, handle, locale)
	if err != nil {
		return nil, err
	}
	return tree.ParentOptions(flat, nav.Settings.MaxLevels, exclude), nil
}

func (s *service) load(ctx context.Context, handle, locale string) (*navigations.Navigation, []*nodes.Node, string, error) {
	nav, err := s.navigations.GetByHandle(ctx, handle)
	if err != nil {
		return nil, nil, "", err
	}
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = s.defaultLocale
	}
	flat, err := s.nodes.List(ctx, nav.ID, locale)
	if err != nil {
		return nil, nil, "", err
	}
	return nav, flat, locale, nil
}

func (s *service) options(locale string) tree.Options {
	site := s.siteURL
	if url, ok := s.localeSiteURLs[strings.ToLower(locale)]; ok && url != "" {
		site = url
	}
	return tree.Options{
		SiteURL:       site,
		TrailingSlash: s.trailingSlash,
		Locale:        locale,
		Resolver:      s.resolver,
	}
}

type activePathKey struct{}

// ContextWithActivePath injects the current request path used for active
// matching when Params leave it empty.
func ContextWithActivePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, activePathKey{}, path)
}

// ActivePathFrom returns the request path injected with ContextWithActivePath.
func ActivePathFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	path, _ := ctx.Value(activePathKey{}).(string)
	return path
}
