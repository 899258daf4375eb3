package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-navtree"
)

func runTree(args []string) error {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	var storage storageFlags
	storage.register(fs)
	handle := fs.String("handle", "", "Navigation handle")
	locale := fs.String("locale", "", "Locale (defaults to NAVTREE_DEFAULT_LOCALE)")
	path := fs.String("path", "", "Request path used for active matching")
	maxLevel := fs.Int("max-level", 0, "Maximum depth to assemble (0 for unlimited)")
	overrideStatus := fs.Bool("all", false, "Include disabled nodes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*handle) == "" {
		return fmt.Errorf("tree: -handle is required")
	}

	module, err := storage.load()
	if err != nil {
		return err
	}
	defer module.Close()

	params, err := navtree.ParseStructureParams(map[string]any{
		"maxLevel":       *maxLevel,
		"overrideStatus": *overrideStatus,
		"activePath":     *path,
	})
	if err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	nodes, err := module.Module.Structures().GetNavRaw(background(), *handle, params, *locale)
	if err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	if nodes == nil {
		nodes = []navtree.TreeNode{}
	}

	payload, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return fmt.Errorf("tree: encode: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(payload))
	return err
}
