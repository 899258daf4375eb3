package nodes

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Ordering keeps sibling groups dense. Callers serialise access per
// navigation; Ordering itself does no locking.
type Ordering struct {
	repo NodeRepository
	now  func() time.Time
}

// NewOrdering wires the ordering engine to a repository.
func NewOrdering(repo NodeRepository, now func() time.Time) *Ordering {
	if now == nil {
		now = time.Now
	}
	return &Ordering{repo: repo, now: now}
}

// NextOrder returns 1 + the highest order in the sibling group, or 0 when
// the group is empty.
func (o *Ordering) NextOrder(ctx context.Context, navigationID uuid.UUID, parentID *uuid.UUID, locale string) (int, error) {
	flat, err := o.repo.ListByNavigation(ctx, navigationID, locale)
	if err != nil {
		return 0, err
	}
	return nextOrder(flat, parentID), nil
}

// ReorderSiblings assigns 0..N-1 to the group at parentID, placing movedID
// right after afterID, or first when afterID is nil.
func (o *Ordering) ReorderSiblings(ctx context.Context, navigationID uuid.UUID, parentID *uuid.UUID, locale string, movedID uuid.UUID, afterID *uuid.UUID) error {
	flat, err := o.repo.ListByNavigation(ctx, navigationID, locale)
	if err != nil {
		return err
	}
	before := snapshot(flat)
	groups := groupByParent(flat)
	key := parentKey(parentID)

	var moved *Node
	for _, node := range groups[key] {
		if node.ID == movedID {
			moved = node
			break
		}
	}
	if moved == nil {
		return failure(ErrNodeNotFound, map[string]any{"node_id": movedID.String()})
	}

	placed, err := placeAfter(groups[key], moved, afterID)
	if err != nil {
		return err
	}
	densify(placed)
	return o.apply(ctx, HierarchyChange{Update: changed(flat, before, o.now())})
}

// RenumberSubtree walks the whole locale tree depth first and reassigns
// dense orders at every level. It returns the number of rewritten nodes.
func (o *Ordering) RenumberSubtree(ctx context.Context, navigationID uuid.UUID, locale string) (int, error) {
	flat, err := o.repo.ListByNavigation(ctx, navigationID, locale)
	if err != nil {
		return 0, err
	}
	before := snapshot(flat)
	renumberTree(flat)
	updates := changed(flat, before, o.now())
	return len(updates), o.apply(ctx, HierarchyChange{Update: updates})
}

func (o *Ordering) apply(ctx context.Context, change HierarchyChange) error {
	if change.Empty() {
		return nil
	}
	return o.repo.ApplyHierarchy(ctx, change)
}

// CheckDense reports ErrInconsistentOrder unless the group orders are
// exactly 0..N-1.
func CheckDense(group []*Node) error {
	orders := make([]int, 0, len(group))
	for _, node := range group {
		orders = append(orders, node.Order)
	}
	slices.Sort(orders)
	for idx, order := range orders {
		if order != idx {
			return fmt.Errorf("%w: expected %d, found %d", ErrInconsistentOrder, idx, order)
		}
	}
	return nil
}

func nextOrder(flat []*Node, parentID *uuid.UUID) int {
	next := 0
	for _, node := range flat {
		if uuidPtrEqual(node.ParentID, parentID) && node.Order >= next {
			next = node.Order + 1
		}
	}
	return next
}

// groupByParent partitions nodes into sibling groups sorted by order. Ties
// keep their input order.
func groupByParent(flat []*Node) map[uuid.UUID][]*Node {
	groups := make(map[uuid.UUID][]*Node)
	for _, node := range flat {
		key := parentKey(node.ParentID)
		groups[key] = append(groups[key], node)
	}
	for _, group := range groups {
		slices.SortStableFunc(group, func(a, b *Node) int {
			return cmp.Compare(a.Order, b.Order)
		})
	}
	return groups
}

// placeAfter returns group with moved removed and reinserted right after
// afterID, or at the front when afterID is nil.
func placeAfter(group []*Node, moved *Node, afterID *uuid.UUID) ([]*Node, error) {
	remaining := make([]*Node, 0, len(group)+1)
	for _, node := range group {
		if node.ID != moved.ID {
			remaining = append(remaining, node)
		}
	}
	if afterID == nil || *afterID == uuid.Nil {
		return append([]*Node{moved}, remaining...), nil
	}
	if *afterID == moved.ID {
		return nil, failure(ErrAfterNodeInvalid, map[string]any{"after_id": afterID.String()})
	}
	idx := slices.IndexFunc(remaining, func(node *Node) bool { return node.ID == *afterID })
	if idx < 0 {
		return nil, failure(ErrAfterNodeInvalid, map[string]any{"after_id": afterID.String()})
	}
	return slices.Insert(remaining, idx+1, moved), nil
}

// densify assigns 0..N-1 following the slice order.
func densify(group []*Node) {
	for idx, node := range group {
		node.Order = idx
	}
}

// renumberTree reassigns dense orders across every sibling group, visiting
// the tree depth first from the root group. Groups whose parent is missing
// are renumbered afterwards.
func renumberTree(flat []*Node) {
	groups := groupByParent(flat)
	visited := make(map[uuid.UUID]bool, len(groups))

	var walk func(key uuid.UUID)
	walk = func(key uuid.UUID) {
		if visited[key] {
			return
		}
		visited[key] = true
		group := groups[key]
		densify(group)
		for _, node := range group {
			walk(node.ID)
		}
	}
	walk(uuid.Nil)

	keys := make([]uuid.UUID, 0, len(groups))
	for key := range groups {
		if !visited[key] {
			keys = append(keys, key)
		}
	}
	slices.SortFunc(keys, func(a, b uuid.UUID) int { return cmp.Compare(a.String(), b.String()) })
	for _, key := range keys {
		walk(key)
	}
}

type placement struct {
	parent uuid.UUID
	order  int
}

func snapshot(flat []*Node) map[uuid.UUID]placement {
	out := make(map[uuid.UUID]placement, len(flat))
	for _, node := range flat {
		out[node.ID] = placement{parent: parentKey(node.ParentID), order: node.Order}
	}
	return out
}

// changed returns the nodes whose parent or order differ from before and
// stamps them with now.
func changed(flat []*Node, before map[uuid.UUID]placement, now time.Time) []*Node {
	var out []*Node
	for _, node := range flat {
		prev, ok := before[node.ID]
		if ok && prev.parent == parentKey(node.ParentID) && prev.order == node.Order {
			continue
		}
		node.UpdatedAt = now
		out = append(out, node)
	}
	return out
}
