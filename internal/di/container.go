package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-navtree/internal/commands"
	synccmd "github.com/goliatone/go-navtree/internal/commands/contentsync"
	navigationscmd "github.com/goliatone/go-navtree/internal/commands/navigations"
	nodescmd "github.com/goliatone/go-navtree/internal/commands/nodes"
	"github.com/goliatone/go-navtree/internal/contentsync"
	"github.com/goliatone/go-navtree/internal/locks"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/internal/logging/console"
	"github.com/goliatone/go-navtree/internal/logging/gologger"
	"github.com/goliatone/go-navtree/internal/migrations"
	"github.com/goliatone/go-navtree/internal/navigations"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/goliatone/go-navtree/internal/runtimeconfig"
	"github.com/goliatone/go-navtree/internal/structures"
	"github.com/goliatone/go-navtree/internal/tree"
	"github.com/goliatone/go-navtree/pkg/activity"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

// ErrBunDBRequired is returned when bun storage is configured without a database.
var ErrBunDBRequired = errors.New("di: bun storage requires WithBunDB")

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	locker         locks.Locker
	redisClient    redis.UniversalClient
	content        interfaces.ContentEntityLookup
	routeManager   *urlkit.RouteManager
	urlResolver    tree.URLResolver
	activityHooks  activity.Hooks
	activity       *activity.Emitter

	navigationRepo navigations.NavigationRepository
	nodeRepo       nodes.NodeRepository

	navigationSvc navigations.Service
	nodeSvc       nodes.Service
	structureSvc  structures.Service
	reactor       *contentsync.Reactor
	tracker       *contentsync.Tracker
	commands      *Commands
}

// Commands groups the command handlers bound to the container services.
type Commands struct {
	CreateNode         *nodescmd.CreateNodeHandler
	UpdateNode         *nodescmd.UpdateNodeHandler
	MoveNode           *nodescmd.MoveNodeHandler
	DeleteNode         *nodescmd.DeleteNodeHandler
	RenumberNavigation *nodescmd.RenumberNavigationHandler

	ElementSaved        *synccmd.ElementSavedHandler
	ElementDeleted      *synccmd.ElementDeletedHandler
	ReconcileNavigation *synccmd.ReconcileNavigationHandler

	CreateNavigation *navigationscmd.CreateNavigationHandler
	DeleteNavigation *navigationscmd.DeleteNavigationHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB switches repositories to bun storage.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithLocker overrides the locker selected by Config.Locking.
func WithLocker(locker locks.Locker) Option {
	return func(c *Container) {
		c.locker = locker
	}
}

// WithRedisClient supplies the client used by the redis locker.
func WithRedisClient(client redis.UniversalClient) Option {
	return func(c *Container) {
		c.redisClient = client
	}
}

// WithContentLookup connects linked nodes to the content system.
func WithContentLookup(lookup interfaces.ContentEntityLookup) Option {
	return func(c *Container) {
		c.content = lookup
	}
}

// WithURLResolver overrides the go-urlkit resolver built from Config.Navigation.
func WithURLResolver(resolver tree.URLResolver) Option {
	return func(c *Container) {
		c.urlResolver = resolver
	}
}

// WithActivityHooks registers hooks notified of navigation and node changes
// when Features.Activity and Activity.Enabled are set.
func WithActivityHooks(hooks activity.Hooks) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureLocker()
	c.configureActivity()
	c.configureCacheDefaults()
	if err := c.configureRepositories(); err != nil {
		return nil, err
	}
	if err := c.configureNavigation(); err != nil {
		return nil, err
	}
	c.configureServices()
	c.configureCommands()

	logging.ModuleLogger(c.loggerProvider, "navtree.di").Debug("container.configured",
		"storage", c.storageName(),
		"cache", c.cacheService != nil,
		"locker", fmt.Sprintf("%T", c.locker),
		"activity", c.activity.Enabled(),
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureLocker() {
	if c.locker != nil {
		return
	}
	cfg := c.Config.Locking
	if strings.EqualFold(strings.TrimSpace(cfg.Provider), "redis") {
		if c.redisClient == nil {
			c.redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		}
		c.locker = locks.NewRedis(c.redisClient, cfg.TTL, locks.WithKeyPrefix("navtree:lock:"))
		return
	}
	c.locker = locks.NewLocal()
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() error {
	if c.bunDB != nil {
		c.navigationRepo = navigations.NewBunNavigationRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.nodeRepo = nodes.NewBunNodeRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), "bun") {
		return ErrBunDBRequired
	}
	c.navigationRepo = navigations.NewMemoryNavigationRepository()
	c.nodeRepo = nodes.NewMemoryNodeRepository()
	return nil
}

func (c *Container) configureNavigation() error {
	if c.urlResolver != nil {
		return nil
	}

	navCfg := c.Config.Navigation
	if navCfg.RouteConfig == nil {
		return nil
	}

	manager, err := newRouteManager(navCfg.RouteConfig)
	if err != nil {
		return err
	}
	c.routeManager = manager
	c.urlResolver = tree.NewURLKitResolver(tree.URLKitResolverOptions{
		Manager:      manager,
		DefaultGroup: strings.TrimSpace(navCfg.URLKit.DefaultGroup),
		LocaleGroups: navCfg.URLKit.LocaleGroups,
		LocaleParam:  strings.TrimSpace(navCfg.URLKit.LocaleParam),
	})
	return nil
}

func newRouteManager(cfg *urlkit.Config) (manager *urlkit.RouteManager, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("di: route config invalid: %v", r)
		}
	}()
	return urlkit.NewRouteManager(cfg), nil
}

func (c *Container) configureActivity() {
	cfg := activity.Config{
		Enabled: c.Config.Features.Activity && c.Config.Activity.Enabled,
		Channel: c.Config.Activity.Channel,
	}
	c.activity = activity.NewEmitter(c.activityHooks, cfg)
}

func (c *Container) configureServices() {
	provider := c.loggerProvider
	navProxy := &navigationLookupProxy{}

	nodeOpts := []nodes.ServiceOption{
		nodes.WithDefaultLocale(c.Config.DefaultLocale),
		nodes.WithLocker(c.locker),
		nodes.WithNavigationLookup(navProxy),
		nodes.WithLogger(logging.NodesLogger(provider)),
		nodes.WithActivityEmitter(c.activity),
	}
	if c.content != nil {
		nodeOpts = append(nodeOpts, nodes.WithContentLookup(c.content))
	}
	c.nodeSvc = nodes.NewService(c.nodeRepo, nodeOpts...)

	c.navigationSvc = navigations.NewService(c.navigationRepo,
		navigations.WithNodeCleaner(c.nodeSvc),
		navigations.WithLocker(c.locker),
		navigations.WithLogger(logging.NavigationsLogger(provider)),
		navigations.WithActivityEmitter(c.activity),
	)
	navProxy.bind(c.navigationSvc)

	structureOpts := []structures.ServiceOption{
		structures.WithDefaultLocale(c.Config.DefaultLocale),
		structures.WithSiteURL(c.Config.SiteURL),
		structures.WithTrailingSlash(c.Config.TrailingSlash),
		structures.WithLocaleSiteURLs(c.Config.LocaleSiteURLs),
		structures.WithLogger(logging.StructuresLogger(provider)),
	}
	if c.urlResolver != nil {
		structureOpts = append(structureOpts, structures.WithURLResolver(c.urlResolver))
	}
	c.structureSvc = structures.NewService(c.navigationSvc, c.nodeSvc, structureOpts...)

	reactorOpts := []contentsync.Option{
		contentsync.WithLogger(logging.SyncLogger(provider)),
	}
	if c.content != nil {
		reactorOpts = append(reactorOpts, contentsync.WithContentLookup(c.content))
	}
	c.reactor = contentsync.NewReactor(c.nodeSvc, reactorOpts...)
	c.tracker = contentsync.NewTracker(c.reactor)
}

func (c *Container) configureCommands() {
	provider := c.loggerProvider
	nodesLogger := commands.CommandLogger(provider, commands.ModuleNodes)
	syncLogger := commands.CommandLogger(provider, commands.ModuleSync)
	navLogger := commands.CommandLogger(provider, commands.ModuleNavigations)
	policy := nodescmd.NewPolicy(c.navigationSvc, c.nodeSvc)

	c.commands = &Commands{
		CreateNode:         nodescmd.NewCreateNodeHandler(c.nodeSvc, policy, nodesLogger),
		UpdateNode:         nodescmd.NewUpdateNodeHandler(c.nodeSvc, nodesLogger),
		MoveNode:           nodescmd.NewMoveNodeHandler(c.nodeSvc, policy, nodesLogger),
		DeleteNode:         nodescmd.NewDeleteNodeHandler(c.nodeSvc, policy, nodesLogger),
		RenumberNavigation: nodescmd.NewRenumberNavigationHandler(c.nodeSvc, nodesLogger),

		ElementSaved:        synccmd.NewElementSavedHandler(c.reactor, syncLogger),
		ElementDeleted:      synccmd.NewElementDeletedHandler(c.reactor, syncLogger),
		ReconcileNavigation: synccmd.NewReconcileNavigationHandler(c.reactor, syncLogger),

		CreateNavigation: navigationscmd.NewCreateNavigationHandler(c.navigationSvc, navLogger),
		DeleteNavigation: navigationscmd.NewDeleteNavigationHandler(c.navigationSvc, navLogger),
	}
}

func (c *Container) storageName() string {
	if c.bunDB != nil {
		return "bun"
	}
	return "memory"
}

// Migrate creates the bun tables. It is a no-op for memory storage.
func (c *Container) Migrate(ctx context.Context) error {
	if c.bunDB == nil {
		return nil
	}
	return migrations.Default().Migrate(ctx, c.bunDB)
}

// LoggerProvider exposes the configured logger provider, which may be nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Locker exposes the configured per-navigation locker.
func (c *Container) Locker() locks.Locker {
	return c.locker
}

// ActivityEmitter returns the emitter shared by the services.
func (c *Container) ActivityEmitter() *activity.Emitter {
	return c.activity
}

// RouteManager exposes the go-urlkit manager, when route config is set.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

// NavigationService returns the navigation registry.
func (c *Container) NavigationService() navigations.Service {
	return c.navigationSvc
}

// NodeService returns the node lifecycle service.
func (c *Container) NodeService() nodes.Service {
	return c.nodeSvc
}

// StructureService returns the structure query service.
func (c *Container) StructureService() structures.Service {
	return c.structureSvc
}

// Reactor returns the content sync reactor.
func (c *Container) Reactor() *contentsync.Reactor {
	return c.reactor
}

// Tracker returns the before/after save adapter bound to the reactor.
func (c *Container) Tracker() *contentsync.Tracker {
	return c.tracker
}

// Commands returns the command handlers.
func (c *Container) Commands() *Commands {
	return c.commands
}
