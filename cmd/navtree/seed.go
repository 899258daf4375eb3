package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-navtree"
	"github.com/goliatone/go-navtree/cmd/navtree/internal/bootstrap"
	navigationscmd "github.com/goliatone/go-navtree/internal/commands/navigations"
	nodescmd "github.com/goliatone/go-navtree/internal/commands/nodes"
	"github.com/goliatone/go-navtree/internal/identity"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// seedFile describes a navigation and its nested nodes.
type seedFile struct {
	Name     string         `yaml:"name"`
	Handle   string         `yaml:"handle"`
	Locale   string         `yaml:"locale"`
	Settings map[string]any `yaml:"settings"`
	Nodes    []seedNode     `yaml:"nodes"`
}

type seedNode struct {
	Name      string     `yaml:"name"`
	URL       string     `yaml:"url"`
	ListClass string     `yaml:"listClass"`
	Blank     bool       `yaml:"blank"`
	Enabled   *bool      `yaml:"enabled"`
	Children  []seedNode `yaml:"children"`
}

func runSeed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	var storage storageFlags
	storage.register(fs)
	file := fs.String("file", "", "YAML file describing the navigation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*file) == "" {
		return errors.New("seed: -file is required")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("seed: read %s: %w", *file, err)
	}
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("seed: parse %s: %w", *file, err)
	}

	module, err := storage.load()
	if err != nil {
		return err
	}
	defer module.Close()

	ctx := background()
	cmds := module.Module.Commands()

	var nav navtree.Navigation
	create := navigationscmd.CreateNavigationCommand{
		Name:           doc.Name,
		Handle:         doc.Handle,
		LegacySettings: doc.Settings,
		Result:         &nav,
	}
	if err := cmds.CreateNavigation.Execute(ctx, create); err != nil {
		return fmt.Errorf("seed: create navigation: %w", err)
	}

	count, err := seedNodes(module, nav.ID, nil, doc.Locale, "", doc.Nodes)
	if err != nil {
		return err
	}
	module.Logger.Info("cli.seed.completed", "handle", nav.Handle, "nodes", count)
	fmt.Fprintf(stdout, "%s %s %d\n", nav.ID, nav.Handle, count)
	return nil
}

// seedNodes creates items depth first. Node ids derive from the position
// and name path so seeding the same file into another database yields the
// same ids.
func seedNodes(module *bootstrap.Module, navigationID uuid.UUID, parentID *uuid.UUID, locale, path string, items []seedNode) (int, error) {
	count := 0
	for i, item := range items {
		nodePath := fmt.Sprintf("%s/%d-%s", path, i, item.Name)
		id := identity.NodeUUID(navigationID, locale, nodePath)
		var node navtree.Node
		cmd := nodescmd.CreateNodeCommand{
			ID:           &id,
			NavigationID: navigationID,
			ParentID:     parentID,
			Name:         item.Name,
			URL:          item.URL,
			ListClass:    item.ListClass,
			Blank:        item.Blank,
			Enabled:      item.Enabled,
			Locale:       locale,
			Admin:        true,
			Result:       &node,
		}
		if err := module.Module.Commands().CreateNode.Execute(background(), cmd); err != nil {
			return count, fmt.Errorf("seed: create node %q: %w", item.Name, err)
		}
		count++
		created := node.ID
		nested, err := seedNodes(module, navigationID, &created, locale, nodePath, item.Children)
		count += nested
		if err != nil {
			return count, err
		}
	}
	return count, nil
}
