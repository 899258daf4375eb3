// Package tree assembles flat, locale-scoped node lists into nested
// navigation structures.
package tree

import (
	"cmp"
	"context"
	"slices"

	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/google/uuid"
)

// Options controls how Build assembles a tree.
type Options struct {
	// StartFromID builds the tree from the children of this node.
	StartFromID *uuid.UUID
	// MaxLevel prunes every node deeper than this level. Zero disables the bound.
	MaxLevel int
	// OverrideStatus includes disabled nodes and their subtrees.
	OverrideStatus bool
	// ActivePath is the current request path, relative to SiteURL.
	ActivePath string
	// IgnoreActiveChilds only marks nodes matching the full active path.
	IgnoreActiveChilds bool

	SiteURL       string
	TrailingSlash bool
	Locale        string
	Resolver      URLResolver
}

// TreeNode is a node annotated with its position in an assembled tree.
type TreeNode struct {
	ID                uuid.UUID  `json:"id"`
	NavigationID      uuid.UUID  `json:"navigation_id"`
	ParentID          *uuid.UUID `json:"parent_id,omitempty"`
	Order             int        `json:"order"`
	Name              string     `json:"name"`
	URL               string     `json:"url"`
	RawURL            string     `json:"raw_url,omitempty"`
	ListClass         string     `json:"list_class,omitempty"`
	Blank             bool       `json:"blank"`
	Enabled           bool       `json:"enabled"`
	LinkedElementID   *uuid.UUID `json:"linked_element_id,omitempty"`
	LinkedElementType string     `json:"linked_element_type,omitempty"`
	Locale            string     `json:"locale"`
	Level             int        `json:"level"`
	HasChildren       bool       `json:"has_children"`
	Active            bool       `json:"active"`
	HasActiveChild    bool       `json:"has_active_child"`
	Children          []TreeNode `json:"children,omitempty"`
}

// Node converts the tree node back into its stored form.
func (t TreeNode) Node() *nodes.Node {
	return &nodes.Node{
		ID:                t.ID,
		NavigationID:      t.NavigationID,
		ParentID:          cloneID(t.ParentID),
		Order:             t.Order,
		Name:              t.Name,
		URL:               t.RawURL,
		ListClass:         t.ListClass,
		Blank:             t.Blank,
		Enabled:           t.Enabled,
		LinkedElementID:   cloneID(t.LinkedElementID),
		LinkedElementType: t.LinkedElementType,
		Locale:            t.Locale,
	}
}

// Build assembles flat into a nested tree. Siblings keep the order of their
// Order field and, for equal values, of flat. Nodes whose parent is absent
// from flat are unreachable and left out.
func Build(ctx context.Context, flat []*nodes.Node, opts Options) []TreeNode {
	a := newAssembler(ctx, flat, opts)
	start := uuid.Nil
	if opts.StartFromID != nil && *opts.StartFromID != uuid.Nil {
		slot, ok := a.index[*opts.StartFromID]
		if !ok || !a.visible(slot) {
			return nil
		}
		start = *opts.StartFromID
	}
	return a.assemble(start, 1, map[uuid.UUID]bool{start: true})
}

type assembler struct {
	ctx     context.Context
	opts    Options
	nodes   []*nodes.Node
	index   map[uuid.UUID]int
	kids    map[uuid.UUID][]int
	urls    []string
	done    []bool
	active  []int8
	matcher *pathMatcher
}

func newAssembler(ctx context.Context, flat []*nodes.Node, opts Options) *assembler {
	a := &assembler{
		ctx:     ctx,
		opts:    opts,
		nodes:   make([]*nodes.Node, 0, len(flat)),
		index:   make(map[uuid.UUID]int, len(flat)),
		kids:    make(map[uuid.UUID][]int),
		matcher: newPathMatcher(opts.ActivePath, opts.SiteURL, opts.IgnoreActiveChilds),
	}
	for _, node := range flat {
		if node == nil {
			continue
		}
		if _, dup := a.index[node.ID]; dup {
			continue
		}
		slot := len(a.nodes)
		a.nodes = append(a.nodes, node)
		a.index[node.ID] = slot
		parent := uuid.Nil
		if node.ParentID != nil {
			parent = *node.ParentID
		}
		a.kids[parent] = append(a.kids[parent], slot)
	}
	for _, slots := range a.kids {
		slices.SortStableFunc(slots, func(x, y int) int {
			return cmp.Compare(a.nodes[x].Order, a.nodes[y].Order)
		})
	}
	a.urls = make([]string, len(a.nodes))
	a.done = make([]bool, len(a.nodes))
	a.active = make([]int8, len(a.nodes))
	return a
}

func (a *assembler) visible(slot int) bool {
	return a.opts.OverrideStatus || a.nodes[slot].Enabled
}

func (a *assembler) url(slot int) string {
	if !a.done[slot] {
		a.urls[slot] = ResolveURL(a.ctx, a.nodes[slot], a.opts)
		a.done[slot] = true
	}
	return a.urls[slot]
}

func (a *assembler) isActive(slot int) bool {
	return a.matcher.matches(a.url(slot))
}

// assemble builds the visible children of parent. path guards against
// cycles in corrupted data.
func (a *assembler) assemble(parent uuid.UUID, level int, path map[uuid.UUID]bool) []TreeNode {
	slots := a.kids[parent]
	if len(slots) == 0 {
		return nil
	}
	out := make([]TreeNode, 0, len(slots))
	for _, slot := range slots {
		node := a.nodes[slot]
		if !a.visible(slot) || path[node.ID] {
			continue
		}
		tn := a.treeNode(slot, level)
		if a.opts.MaxLevel <= 0 || level < a.opts.MaxLevel {
			path[node.ID] = true
			tn.Children = a.assemble(node.ID, level+1, path)
			delete(path, node.ID)
		}
		tn.HasChildren = len(tn.Children) > 0
		out = append(out, tn)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (a *assembler) treeNode(slot, level int) TreeNode {
	node := a.nodes[slot]
	return TreeNode{
		ID:                node.ID,
		NavigationID:      node.NavigationID,
		ParentID:          cloneID(node.ParentID),
		Order:             node.Order,
		Name:              node.Name,
		URL:               a.url(slot),
		RawURL:            node.URL,
		ListClass:         node.ListClass,
		Blank:             node.Blank,
		Enabled:           node.Enabled,
		LinkedElementID:   cloneID(node.LinkedElementID),
		LinkedElementType: node.LinkedElementType,
		Locale:            node.Locale,
		Level:             level,
		Active:            a.isActive(slot),
		HasActiveChild:    a.activeBelow(slot),
	}
}

const (
	memoUnknown int8 = iota
	memoPending
	memoNo
	memoYes
)

// activeBelow reports whether any visible descendant of slot is active,
// including descendants pruned by MaxLevel.
func (a *assembler) activeBelow(slot int) bool {
	if !a.matcher.enabled() {
		return false
	}
	switch a.active[slot] {
	case memoYes:
		return true
	case memoNo, memoPending:
		return false
	}
	a.active[slot] = memoPending
	result := false
	for _, child := range a.kids[a.nodes[slot].ID] {
		if !a.visible(child) {
			continue
		}
		if a.isActive(child) || a.activeBelow(child) {
			result = true
			break
		}
	}
	a.active[slot] = memoNo
	if result {
		a.active[slot] = memoYes
	}
	return result
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	cloned := *id
	return &cloned
}
