package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-navtree/cmd/navtree/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

var stdout io.Writer = os.Stdout

var errUsage = errors.New("usage: navtree <seed|tree|move|delete> [flags]")

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("navtree: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "seed":
		return runSeed(rest)
	case "tree":
		return runTree(rest)
	case "move":
		return runMove(rest)
	case "delete":
		return runDelete(rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// loadModule reads NAVTREE_* settings and builds the module. The flag set
// may override the database location.
func loadModule(envFile, driver, dsn string) (*bootstrap.Module, error) {
	opts, err := bootstrap.LoadOptions(envFile)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(driver) != "" {
		opts.Driver = driver
	}
	if strings.TrimSpace(dsn) != "" {
		opts.DSN = dsn
	}
	return moduleBuilder(opts)
}

type storageFlags struct {
	envFile string
	driver  string
	dsn     string
}

func (s *storageFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.envFile, "env", ".env", "Environment file loaded before NAVTREE_* variables are read")
	fs.StringVar(&s.driver, "driver", "", "Database driver override (sqlite, postgres, memory)")
	fs.StringVar(&s.dsn, "dsn", "", "Database DSN override")
}

func (s *storageFlags) load() (*bootstrap.Module, error) {
	return loadModule(s.envFile, s.driver, s.dsn)
}

func background() context.Context {
	return context.Background()
}
