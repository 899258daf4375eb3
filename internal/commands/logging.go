package commands

import (
	"strings"

	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/pkg/interfaces"
)

// Command logger modules, one per command package.
const (
	ModuleNodes       = "nodes"
	ModuleSync        = "sync"
	ModuleNavigations = "navigations"
)

// CommandLogger returns the logger for a command package, registered as
// "navtree.commands.<module>" and tagged with component=command.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = "core"
	}
	return logging.WithFields(logging.ModuleLogger(provider, "navtree.commands."+module), map[string]any{
		"component":      "command",
		"command_module": module,
	})
}
