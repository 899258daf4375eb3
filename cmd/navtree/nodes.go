package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/goliatone/go-navtree"
	"github.com/goliatone/go-navtree/cmd/navtree/internal/bootstrap"
	nodescmd "github.com/goliatone/go-navtree/internal/commands/nodes"
)

func runMove(args []string) error {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	var storage storageFlags
	storage.register(fs)
	nodeFlag := fs.String("id", "", "Node ID to move")
	parentFlag := fs.String("parent", "", "New parent node ID (empty for root)")
	afterFlag := fs.String("after", "", "Sibling ID the node is placed after")
	targetFlag := fs.String("target", "", "Target node ID for relative placement")
	position := fs.String("position", "", "Placement relative to -target: before, after or child")
	admin := fs.Bool("admin", false, "Bypass permission floors and depth limits")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nodeID, err := bootstrap.ParseUUID(*nodeFlag)
	if err != nil {
		return fmt.Errorf("move: invalid -id: %w", err)
	}
	parentID, err := bootstrap.ParseUUIDPointer(*parentFlag)
	if err != nil {
		return fmt.Errorf("move: invalid -parent: %w", err)
	}
	afterID, err := bootstrap.ParseUUIDPointer(*afterFlag)
	if err != nil {
		return fmt.Errorf("move: invalid -after: %w", err)
	}
	targetID, err := bootstrap.ParseUUIDPointer(*targetFlag)
	if err != nil {
		return fmt.Errorf("move: invalid -target: %w", err)
	}

	module, err := storage.load()
	if err != nil {
		return err
	}
	defer module.Close()

	cmd := nodescmd.MoveNodeCommand{
		NodeID:   nodeID,
		ParentID: parentID,
		AfterID:  afterID,
		TargetID: targetID,
		Position: navtree.Position(strings.ToLower(strings.TrimSpace(*position))),
		Admin:    *admin,
	}
	if err := module.Module.Commands().MoveNode.Execute(background(), cmd); err != nil {
		return fmt.Errorf("move: %w", err)
	}
	fmt.Fprintf(stdout, "moved %s\n", nodeID)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	var storage storageFlags
	storage.register(fs)
	nodeFlag := fs.String("id", "", "Node ID to delete with its subtree")
	admin := fs.Bool("admin", false, "Bypass permission floors")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nodeID, err := bootstrap.ParseUUID(*nodeFlag)
	if err != nil {
		return fmt.Errorf("delete: invalid -id: %w", err)
	}

	module, err := storage.load()
	if err != nil {
		return err
	}
	defer module.Close()

	cmd := nodescmd.DeleteNodeCommand{NodeID: nodeID, Admin: *admin}
	if err := module.Module.Commands().DeleteNode.Execute(background(), cmd); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	fmt.Fprintf(stdout, "deleted %s\n", nodeID)
	return nil
}
