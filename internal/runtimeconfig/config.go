package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrDefaultLocaleRequired   = errors.New("navtree config: default locale is required")
	ErrSiteURLInvalid          = errors.New("navtree config: site url must be absolute")
	ErrStorageProviderUnknown  = errors.New("navtree config: storage provider is invalid")
	ErrStorageDialectUnknown   = errors.New("navtree config: storage dialect is invalid")
	ErrCacheTTLInvalid         = errors.New("navtree config: cache ttl must be positive when cache is enabled")
	ErrLockingProviderUnknown  = errors.New("navtree config: locking provider is invalid")
	ErrLockingRedisAddr        = errors.New("navtree config: redis address is required for the redis locker")
	ErrLockingTTLInvalid       = errors.New("navtree config: lock ttl must be positive")
	ErrLoggingProviderRequired = errors.New("navtree config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("navtree config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("navtree config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("navtree config: logging format is invalid")
)

// Config aggregates runtime options for the navigation module.
type Config struct {
	DefaultLocale string
	// SiteURL replaces the {siteUrl} placeholder in node urls.
	SiteURL string
	// LocaleSiteURLs overrides SiteURL per locale.
	LocaleSiteURLs map[string]string
	TrailingSlash  bool
	Storage        StorageConfig
	Cache          CacheConfig
	Locking        LockingConfig
	Navigation     NavigationConfig
	Features       Features
	Logging        LoggingConfig
	Activity       ActivityConfig
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Provider string
	Dialect  string
}

// CacheConfig captures cache behaviour toggles for the bun repositories.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LockingConfig selects the per-navigation lock implementation.
type LockingConfig struct {
	Provider  string
	RedisAddr string
	TTL       time.Duration
}

// NavigationConfig captures routing configuration for route: node urls.
type NavigationConfig struct {
	RouteConfig *urlkit.Config
	URLKit      URLKitResolverConfig
}

// URLKitResolverConfig configures the go-urlkit based resolver.
type URLKitResolverConfig struct {
	DefaultGroup string
	LocaleGroups map[string]string
	LocaleParam  string
}

// Features toggles optional module functionality.
type Features struct {
	Logger   bool
	Activity bool
}

// ActivityConfig controls activity emission for navigation changes.
type ActivityConfig struct {
	Enabled bool
	Channel string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns in-memory defaults suitable for tests and embedding.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Storage: StorageConfig{
			Provider: "memory",
			Dialect:  "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Locking: LockingConfig{
			Provider: "local",
			TTL:      10 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Activity: ActivityConfig{
			Channel: "navtree",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	if site := strings.TrimSpace(cfg.SiteURL); site != "" {
		parsed, err := url.Parse(site)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: %s", ErrSiteURLInvalid, site)
		}
	}
	for locale, site := range cfg.LocaleSiteURLs {
		parsed, err := url.Parse(strings.TrimSpace(site))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: %s=%s", ErrSiteURLInvalid, locale, site)
		}
	}

	switch normalize(cfg.Storage.Provider) {
	case "", "memory":
	case "bun":
		switch normalize(cfg.Storage.Dialect) {
		case "", "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, cfg.Storage.Dialect)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}

	switch normalize(cfg.Locking.Provider) {
	case "", "local":
	case "redis":
		if strings.TrimSpace(cfg.Locking.RedisAddr) == "" {
			return ErrLockingRedisAddr
		}
		if cfg.Locking.TTL <= 0 {
			return ErrLockingTTLInvalid
		}
	default:
		return fmt.Errorf("%w: %s", ErrLockingProviderUnknown, cfg.Locking.Provider)
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
