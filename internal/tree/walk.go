package tree

import (
	"context"
	"iter"
	"strings"

	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/google/uuid"
)

// RootOptionLabel labels the top level entry returned by ParentOptions.
const RootOptionLabel = "Add to navigation"

// Walk yields every node of tree depth-first, parents before children.
// The sequence can be ranged over any number of times.
func Walk(tree []TreeNode) iter.Seq[TreeNode] {
	return func(yield func(TreeNode) bool) {
		walk(tree, yield)
	}
}

func walk(tree []TreeNode, yield func(TreeNode) bool) bool {
	for _, node := range tree {
		if !yield(node) {
			return false
		}
		if !walk(node.Children, yield) {
			return false
		}
	}
	return true
}

// Flatten lists tree depth-first as stored nodes. Building the result
// again yields the same tree.
func Flatten(tree []TreeNode) []*nodes.Node {
	var out []*nodes.Node
	for node := range Walk(tree) {
		out = append(out, node.Node())
	}
	return out
}

// Level returns the depth of id in flat, starting at 1 for root nodes.
// It returns 0 when id is missing or its ancestry is broken.
func Level(flat []*nodes.Node, id uuid.UUID) int {
	byID := make(map[uuid.UUID]*nodes.Node, len(flat))
	for _, node := range flat {
		if node != nil {
			byID[node.ID] = node
		}
	}
	level := 0
	current, ok := byID[id]
	for ok {
		level++
		if level > len(byID) {
			return 0
		}
		if current.ParentID == nil || *current.ParentID == uuid.Nil {
			return level
		}
		current, ok = byID[*current.ParentID]
	}
	return 0
}

// ActiveNodeIDForLevel finds the node matching the first level segments of
// activePath. A node sitting at that tree level wins over one found deeper
// or higher in the tree.
func ActiveNodeIDForLevel(ctx context.Context, flat []*nodes.Node, activePath string, level int, opts Options) (uuid.UUID, bool) {
	if level < 1 {
		return uuid.Nil, false
	}
	path, ok := newPathMatcher("", opts.SiteURL, true).normalize(activePath)
	if !ok {
		return uuid.Nil, false
	}
	parts := segments(path)
	if len(parts) < level {
		return uuid.Nil, false
	}
	target := "/" + strings.Join(parts[:level], "/")

	opts.ActivePath = target
	opts.IgnoreActiveChilds = true
	opts.MaxLevel = 0
	opts.StartFromID = nil

	fallback, found := uuid.Nil, false
	for node := range Walk(Build(ctx, flat, opts)) {
		if !node.Active {
			continue
		}
		if node.Level == level {
			return node.ID, true
		}
		if !found {
			fallback, found = node.ID, true
		}
	}
	return fallback, found
}

// ParentOption is one entry of a parent picker.
type ParentOption struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Level int       `json:"level"`
}

// ParentOptions lists the nodes a node may be placed under, indented by
// level. The root entry comes first and carries uuid.Nil. Disabled nodes
// are included. With maxLevels > 0 only nodes above the deepest level are
// offered; the subtree of exclude is skipped.
func ParentOptions(flat []*nodes.Node, maxLevels int, exclude *uuid.UUID) []ParentOption {
	options := []ParentOption{{ID: uuid.Nil, Label: RootOptionLabel}}
	tree := Build(context.Background(), flat, Options{OverrideStatus: true})

	var visit func(list []TreeNode)
	visit = func(list []TreeNode) {
		for _, node := range list {
			if exclude != nil && node.ID == *exclude {
				continue
			}
			if maxLevels > 0 && node.Level >= maxLevels {
				continue
			}
			options = append(options, ParentOption{
				ID:    node.ID,
				Label: strings.Repeat("    ", node.Level-1) + node.Name,
				Level: node.Level,
			})
			visit(node.Children)
		}
	}
	visit(tree)
	return options
}
