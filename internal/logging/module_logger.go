package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-navtree/pkg/interfaces"
)

const (
	rootModule        = "navtree"
	nodesModule       = "navtree.nodes"
	navigationsModule = "navtree.navigations"
	syncModule        = "navtree.sync"
	structuresModule  = "navtree.structures"
)

const (
	fieldNavigationID = "navigation_id"
	fieldLocale       = "locale"
	fieldNodeID       = "node_id"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields the
// no-op logger. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// WithFields attaches fields when logger carries structured fields and
// returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// NodesLogger returns the logger namespace used by the node lifecycle.
func NodesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, nodesModule)
}

// NavigationsLogger returns the logger namespace used by the registry.
func NavigationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, navigationsModule)
}

// SyncLogger returns the logger namespace used by the content sync reactor.
func SyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, syncModule)
}

// StructuresLogger returns the logger namespace used by structure queries.
func StructuresLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, structuresModule)
}

// WithNavigationContext adds navigation, locale and node identifiers to the
// logger. Empty values are skipped.
func WithNavigationContext(logger interfaces.Logger, navigationID, locale, nodeID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(navigationID); trimmed != "" {
		fields[fieldNavigationID] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(nodeID); trimmed != "" {
		fields[fieldNodeID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
