package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-navtree"
	"github.com/goliatone/go-navtree/internal/di"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var ErrDriverUnknown = errors.New("navtree cli: database driver must be memory, sqlite or postgres")

// Options is read from NAVTREE_* environment variables, optionally seeded
// from .env files.
type Options struct {
	Driver        string        `env:"NAVTREE_DB_DRIVER" envDefault:"sqlite"`
	DSN           string        `env:"NAVTREE_DB_DSN" envDefault:"file:navtree.db?_fk=1"`
	DefaultLocale string        `env:"NAVTREE_DEFAULT_LOCALE" envDefault:"en"`
	SiteURL       string        `env:"NAVTREE_SITE_URL"`
	TrailingSlash bool          `env:"NAVTREE_TRAILING_SLASH" envDefault:"false"`
	CacheEnabled  bool          `env:"NAVTREE_CACHE_ENABLED" envDefault:"false"`
	CacheTTL      time.Duration `env:"NAVTREE_CACHE_TTL" envDefault:"1m"`
	RedisAddr     string        `env:"NAVTREE_REDIS_ADDR"`
	LockTTL       time.Duration `env:"NAVTREE_LOCK_TTL" envDefault:"10s"`
	LogProvider   string        `env:"NAVTREE_LOG_PROVIDER" envDefault:"console"`
	LogLevel      string        `env:"NAVTREE_LOG_LEVEL" envDefault:"warn"`
	LogFormat     string        `env:"NAVTREE_LOG_FORMAT"`

	LoggerProvider interfaces.LoggerProvider `env:"-"`
}

// LoadOptions reads the given .env files, ignoring missing ones, and parses
// the environment.
func LoadOptions(files ...string) (Options, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Options{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("parse environment: %w", err)
	}
	return opts, nil
}

// Config maps the options onto the module configuration.
func (o Options) Config() navtree.Config {
	cfg := navtree.DefaultConfig()
	if locale := strings.TrimSpace(o.DefaultLocale); locale != "" {
		cfg.DefaultLocale = locale
	}
	cfg.SiteURL = strings.TrimSpace(o.SiteURL)
	cfg.TrailingSlash = o.TrailingSlash
	if driver(o.Driver) != "memory" {
		cfg.Storage.Provider = "bun"
		cfg.Storage.Dialect = driver(o.Driver)
	}
	cfg.Cache.Enabled = o.CacheEnabled
	if o.CacheTTL > 0 {
		cfg.Cache.DefaultTTL = o.CacheTTL
	}
	if addr := strings.TrimSpace(o.RedisAddr); addr != "" {
		cfg.Locking.Provider = "redis"
		cfg.Locking.RedisAddr = addr
		cfg.Locking.TTL = o.LockTTL
	}
	cfg.Features.Logger = true
	cfg.Logging.Provider = strings.TrimSpace(o.LogProvider)
	cfg.Logging.Level = strings.TrimSpace(o.LogLevel)
	cfg.Logging.Format = strings.TrimSpace(o.LogFormat)
	return cfg
}

// Module wraps the navtree module with the resources the CLI must close.
type Module struct {
	Module *navtree.Module
	Logger interfaces.Logger
	db     *bun.DB
}

// Close releases the database handle.
func (m *Module) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// BuildModule opens storage, wires the module and creates missing tables.
func BuildModule(opts Options) (*Module, error) {
	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	db, err := openDB(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	if db != nil {
		diOpts = append(diOpts, di.WithBunDB(db))
	}

	module, err := navtree.New(opts.Config(), diOpts...)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("initialise navtree module: %w", err)
	}
	if err := module.Migrate(context.Background()); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Module{
		Module: module,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "navtree.cli"),
		db:     db,
	}, nil
}

func openDB(name, dsn string) (*bun.DB, error) {
	switch driver(name) {
	case "memory":
		return nil, nil
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres":
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrDriverUnknown, name)
	}
}

func closeDB(db *bun.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func driver(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return "sqlite"
	case "postgres", "postgresql", "pgx":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

// ParseUUID converts value into a UUID, returning uuid.Nil when it is empty.
func ParseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(trimmed)
}

// ParseUUIDPointer returns nil for an empty value.
func ParseUUIDPointer(value string) (*uuid.UUID, error) {
	id, err := ParseUUID(value)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, nil
	}
	return &id, nil
}
