package navtree

import "github.com/goliatone/go-navtree/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired   = runtimeconfig.ErrDefaultLocaleRequired
	ErrSiteURLInvalid          = runtimeconfig.ErrSiteURLInvalid
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDialectUnknown   = runtimeconfig.ErrStorageDialectUnknown
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrLockingProviderUnknown  = runtimeconfig.ErrLockingProviderUnknown
	ErrLockingRedisAddr        = runtimeconfig.ErrLockingRedisAddr
	ErrLockingTTLInvalid       = runtimeconfig.ErrLockingTTLInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	LockingConfig        = runtimeconfig.LockingConfig
	NavigationConfig     = runtimeconfig.NavigationConfig
	URLKitResolverConfig = runtimeconfig.URLKitResolverConfig
	Features             = runtimeconfig.Features
	LoggingConfig        = runtimeconfig.LoggingConfig
	ActivityConfig       = runtimeconfig.ActivityConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
