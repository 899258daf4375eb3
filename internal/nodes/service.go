package nodes

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-navtree/internal/locks"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/pkg/activity"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
)

// Service describes node lifecycle operations. Every structural mutation
// holds the navigation lock and persists through one ApplyHierarchy call.
type Service interface {
	Create(ctx context.Context, input CreateNodeInput) (*Node, error)
	Update(ctx context.Context, input UpdateNodeInput) (*Node, error)
	Move(ctx context.Context, input MoveNodeInput) (*Node, error)
	Place(ctx context.Context, input PlaceNodeInput) (*Node, error)
	// Delete removes the node and its descendants. It reports false when
	// the node does not exist.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	RefreshLinked(ctx context.Context, input RefreshLinkedInput) (*Node, error)

	Get(ctx context.Context, id uuid.UUID) (*Node, error)
	List(ctx context.Context, navigationID uuid.UUID, locale string) ([]*Node, error)
	ListByElement(ctx context.Context, elementID uuid.UUID, elementType, locale string) ([]*Node, error)
	// Level returns the 1-based depth of a node.
	Level(ctx context.Context, id uuid.UUID) (int, error)
	Renumber(ctx context.Context, navigationID uuid.UUID, locale string) (int, error)
	DeleteByNavigation(ctx context.Context, navigationID uuid.UUID) (int, error)
}

// NavigationLookup confirms navigations exist before nodes are attached.
type NavigationLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ServiceOption configures node service behaviour.
type ServiceOption func(*service)

// WithClock overrides the internal time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides node id generation.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithLocker serialises structural mutations per navigation.
func WithLocker(locker locks.Locker) ServiceOption {
	return func(s *service) {
		if locker != nil {
			s.locker = locker
		}
	}
}

// WithNavigationLookup enables the navigation existence check on create.
func WithNavigationLookup(lookup NavigationLookup) ServiceOption {
	return func(s *service) {
		s.navigations = lookup
	}
}

// WithContentLookup lets linked nodes derive their url and default name.
func WithContentLookup(lookup interfaces.ContentEntityLookup) ServiceOption {
	return func(s *service) {
		s.content = lookup
	}
}

// WithDefaultLocale sets the locale used when inputs leave it empty.
func WithDefaultLocale(locale string) ServiceOption {
	return func(s *service) {
		s.defaultLocale = strings.TrimSpace(locale)
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivityEmitter reports node changes to activity hooks.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.activity = emitter
		}
	}
}

type service struct {
	repo          NodeRepository
	ordering      *Ordering
	navigations   NavigationLookup
	content       interfaces.ContentEntityLookup
	locker        locks.Locker
	logger        interfaces.Logger
	activity      *activity.Emitter
	now           func() time.Time
	newID         func() uuid.UUID
	defaultLocale string
}

// NewService constructs a node lifecycle service.
func NewService(repo NodeRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		locker: locks.NewLocal(),
		logger: logging.NoOp(),
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.ordering = NewOrdering(repo, s.now)
	return s
}

func (s *service) Create(ctx context.Context, input CreateNodeInput) (*Node, error) {
	if input.NavigationID == uuid.Nil {
		return nil, failure(ErrNavigationRequired)
	}
	locale := s.locale(input.Locale)
	if locale == "" {
		return nil, failure(ErrLocaleRequired)
	}

	if s.navigations != nil {
		ok, err := s.navigations.Exists(ctx, input.NavigationID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, failure(ErrNavigationNotFound, map[string]any{"navigation_id": input.NavigationID.String()})
		}
	}

	name := strings.TrimSpace(input.Name)
	url := NormalizeURL(input.URL)
	elementType := strings.ToLower(strings.TrimSpace(input.LinkedElementType))
	var linkedID *uuid.UUID
	if input.LinkedElementID != nil && *input.LinkedElementID != uuid.Nil {
		if !interfaces.IsKnownElementType(elementType) {
			return nil, failure(ErrElementTypeInvalid, map[string]any{"element_type": input.LinkedElementType})
		}
		linkedID = cloneUUIDPtr(input.LinkedElementID)
		if s.content != nil {
			entity, err := s.content.GetByID(ctx, *linkedID, elementType, locale)
			if err != nil && !errors.Is(err, interfaces.ErrContentEntityNotFound) {
				return nil, err
			}
			if entity == nil {
				return nil, failure(ErrLinkedElementNotFound, map[string]any{"element_id": linkedID.String()})
			}
			url = LinkedURL(entity.URI)
			if name == "" {
				name = strings.TrimSpace(entity.Title)
			}
		}
	} else {
		elementType = ""
	}
	if name == "" {
		return nil, failure(ErrNameRequired)
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	parentID := cloneUUIDPtr(input.ParentID)
	if parentID != nil && *parentID == uuid.Nil {
		parentID = nil
	}

	release, err := s.lock(ctx, input.NavigationID)
	if err != nil {
		return nil, err
	}
	defer release()

	flat, err := s.repo.ListByNavigation(ctx, input.NavigationID, locale)
	if err != nil {
		return nil, err
	}
	if parentID != nil && !containsNode(flat, *parentID) {
		return nil, failure(ErrParentInvalid, map[string]any{"parent_id": parentID.String()})
	}

	id := s.nextID()
	if input.ID != nil && *input.ID != uuid.Nil {
		id = *input.ID
	}
	now := s.now()
	node := &Node{
		ID:                id,
		NavigationID:      input.NavigationID,
		ParentID:          parentID,
		Order:             nextOrder(flat, parentID),
		Name:              name,
		URL:               url,
		ListClass:         strings.TrimSpace(input.ListClass),
		Blank:             input.Blank,
		Enabled:           enabled,
		LinkedElementID:   linkedID,
		LinkedElementType: elementType,
		Locale:            locale,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := s.repo.Create(ctx, node)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, created.NavigationID, created.Locale)
	s.log(ctx, created.NavigationID, created.Locale, created.ID).Debug("node.created", "order", created.Order)
	s.emitActivity(ctx, "create", created, map[string]any{"name": created.Name, "order": created.Order})
	return created, nil
}

func (s *service) Update(ctx context.Context, input UpdateNodeInput) (*Node, error) {
	node, err := s.get(ctx, input.NodeID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, failure(ErrNameRequired)
		}
		node.Name = name
	}
	if input.URL != nil {
		url := NormalizeURL(*input.URL)
		if node.IsLinked() && url != node.URL {
			return nil, failure(ErrURLReadOnly, map[string]any{"node_id": node.ID.String()})
		}
		node.URL = url
	}
	if input.ListClass != nil {
		node.ListClass = strings.TrimSpace(*input.ListClass)
	}
	if input.Blank != nil {
		node.Blank = *input.Blank
	}
	if input.Enabled != nil {
		node.Enabled = *input.Enabled
	}
	node.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, node)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	s.invalidate(ctx, updated.NavigationID, updated.Locale)
	s.emitActivity(ctx, "update", updated, map[string]any{"name": updated.Name, "enabled": updated.Enabled})
	return updated, nil
}

func (s *service) RefreshLinked(ctx context.Context, input RefreshLinkedInput) (*Node, error) {
	node, err := s.get(ctx, input.NodeID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		node.Name = strings.TrimSpace(*input.Name)
	}
	node.URL = input.URL
	node.Enabled = input.Enabled
	node.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, node)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	s.invalidate(ctx, updated.NavigationID, updated.Locale)
	return updated, nil
}

func (s *service) Move(ctx context.Context, input MoveNodeInput) (*Node, error) {
	node, err := s.get(ctx, input.NodeID)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, node.NavigationID)
	if err != nil {
		return nil, err
	}
	defer release()

	flat, err := s.repo.ListByNavigation(ctx, node.NavigationID, node.Locale)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, flat, input)
}

func (s *service) Place(ctx context.Context, input PlaceNodeInput) (*Node, error) {
	switch input.Position {
	case PositionBefore, PositionAfter, PositionChild:
	default:
		return nil, failure(ErrPositionInvalid, map[string]any{"position": string(input.Position)})
	}

	node, err := s.get(ctx, input.NodeID)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, node.NavigationID)
	if err != nil {
		return nil, err
	}
	defer release()

	flat, err := s.repo.ListByNavigation(ctx, node.NavigationID, node.Locale)
	if err != nil {
		return nil, err
	}
	target := findNode(flat, input.TargetID)
	if target == nil {
		return nil, failure(ErrTargetNodeNotFound, map[string]any{"target_id": input.TargetID.String()})
	}

	move := MoveNodeInput{NodeID: input.NodeID}
	switch input.Position {
	case PositionChild:
		move.ParentID = &target.ID
	case PositionAfter:
		move.ParentID = cloneUUIDPtr(target.ParentID)
		move.AfterID = &target.ID
	case PositionBefore:
		move.ParentID = cloneUUIDPtr(target.ParentID)
		move.AfterID = previousSibling(flat, target, input.NodeID)
	}
	return s.move(ctx, flat, move)
}

// move applies a reparent on an already locked, freshly listed tree.
func (s *service) move(ctx context.Context, flat []*Node, input MoveNodeInput) (*Node, error) {
	node := findNode(flat, input.NodeID)
	if node == nil {
		return nil, failure(ErrNodeNotFound, map[string]any{"node_id": input.NodeID.String()})
	}

	newParent := parentKey(input.ParentID)
	if newParent != uuid.Nil {
		if newParent == node.ID {
			return nil, failure(ErrCycle, map[string]any{"node_id": node.ID.String()})
		}
		if !containsNode(flat, newParent) {
			return nil, failure(ErrParentInvalid, map[string]any{"parent_id": newParent.String()})
		}
		if isDescendant(flat, node.ID, newParent) {
			return nil, failure(ErrCycle, map[string]any{"node_id": node.ID.String(), "parent_id": newParent.String()})
		}
	}

	var afterID *uuid.UUID
	if input.AfterID != nil && *input.AfterID != uuid.Nil {
		if !containsNode(flat, *input.AfterID) {
			if _, err := s.repo.GetByID(ctx, *input.AfterID); err != nil {
				return nil, failure(ErrAfterNodeNotFound, map[string]any{"after_id": input.AfterID.String()})
			}
			return nil, failure(ErrAfterNodeInvalid, map[string]any{"after_id": input.AfterID.String()})
		}
		afterID = cloneUUIDPtr(input.AfterID)
	}

	groups := groupByParent(flat)
	origin := parentKey(node.ParentID)
	consistent := CheckDense(groups[origin]) == nil && CheckDense(groups[newParent]) == nil

	before := snapshot(flat)
	node.ParentID = parentPtr(newParent)

	destination := make([]*Node, 0, len(groups[newParent])+1)
	for _, sibling := range groups[newParent] {
		if sibling.ID != node.ID {
			destination = append(destination, sibling)
		}
	}
	placed, err := placeAfter(destination, node, afterID)
	if err != nil {
		return nil, err
	}
	densify(placed)

	if origin != newParent {
		remaining := make([]*Node, 0, len(groups[origin]))
		for _, sibling := range groups[origin] {
			if sibling.ID != node.ID {
				remaining = append(remaining, sibling)
			}
		}
		densify(remaining)
	}

	if !consistent {
		s.log(ctx, node.NavigationID, node.Locale, node.ID).Warn("node.order.inconsistent", "error", ErrInconsistentOrder)
		renumberTree(flat)
	}

	change := HierarchyChange{Update: changed(flat, before, s.now())}
	if err := s.apply(ctx, node.NavigationID, node.Locale, change); err != nil {
		return nil, err
	}
	s.log(ctx, node.NavigationID, node.Locale, node.ID).Debug("node.moved",
		"parent_id", newParent.String(),
		"order", node.Order,
		"updated", len(change.Update),
	)
	s.emitActivity(ctx, "move", node, map[string]any{"parent_id": newParent.String(), "order": node.Order})
	return node.Clone(), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	node, err := s.get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNodeNotFound) {
			return false, nil
		}
		return false, err
	}

	release, err := s.lock(ctx, node.NavigationID)
	if err != nil {
		return false, err
	}
	defer release()

	flat, err := s.repo.ListByNavigation(ctx, node.NavigationID, node.Locale)
	if err != nil {
		return false, err
	}
	node = findNode(flat, id)
	if node == nil {
		return false, nil
	}

	doomed := descendantIDs(flat, node.ID)
	doomed = append([]uuid.UUID{node.ID}, doomed...)
	removed := make(map[uuid.UUID]struct{}, len(doomed))
	for _, doomedID := range doomed {
		removed[doomedID] = struct{}{}
	}

	remaining := make([]*Node, 0, len(flat)-len(doomed))
	for _, candidate := range flat {
		if _, gone := removed[candidate.ID]; !gone {
			remaining = append(remaining, candidate)
		}
	}

	before := snapshot(remaining)
	groups := groupByParent(remaining)
	origin := parentKey(node.ParentID)
	if err := CheckDense(slices.Concat(groups[origin], []*Node{node})); err != nil {
		s.log(ctx, node.NavigationID, node.Locale, node.ID).Warn("node.order.inconsistent", "error", err)
		renumberTree(remaining)
	} else {
		densify(groups[origin])
	}

	change := HierarchyChange{
		Delete: doomed,
		Update: changed(remaining, before, s.now()),
	}
	if err := s.apply(ctx, node.NavigationID, node.Locale, change); err != nil {
		return false, err
	}
	s.log(ctx, node.NavigationID, node.Locale, node.ID).Debug("node.deleted", "removed", len(doomed))
	s.emitActivity(ctx, "delete", node, map[string]any{"removed": len(doomed)})
	return true, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Node, error) {
	return s.get(ctx, id)
}

func (s *service) List(ctx context.Context, navigationID uuid.UUID, locale string) ([]*Node, error) {
	locale = s.locale(locale)
	cache := RequestCacheFrom(ctx)
	if cache != nil {
		if records, ok := cache.get(navigationID, locale); ok {
			return records, nil
		}
	}
	records, err := s.repo.ListByNavigation(ctx, navigationID, locale)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.put(navigationID, locale, records)
	}
	return records, nil
}

func (s *service) ListByElement(ctx context.Context, elementID uuid.UUID, elementType, locale string) ([]*Node, error) {
	return s.repo.ListByElement(ctx, elementID, strings.ToLower(strings.TrimSpace(elementType)), strings.TrimSpace(locale))
}

func (s *service) Level(ctx context.Context, id uuid.UUID) (int, error) {
	node, err := s.get(ctx, id)
	if err != nil {
		return 0, err
	}
	flat, err := s.List(ctx, node.NavigationID, node.Locale)
	if err != nil {
		return 0, err
	}
	return levelOf(flat, id), nil
}

func (s *service) Renumber(ctx context.Context, navigationID uuid.UUID, locale string) (int, error) {
	locale = s.locale(locale)
	release, err := s.lock(ctx, navigationID)
	if err != nil {
		return 0, err
	}
	defer release()

	count, err := s.ordering.RenumberSubtree(ctx, navigationID, locale)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, navigationID, locale)
	return count, nil
}

func (s *service) DeleteByNavigation(ctx context.Context, navigationID uuid.UUID) (int, error) {
	release, err := s.lock(ctx, navigationID)
	if err != nil {
		return 0, err
	}
	defer release()

	count, err := s.repo.DeleteByNavigation(ctx, navigationID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, navigationID, "")
	return count, nil
}

func (s *service) get(ctx context.Context, id uuid.UUID) (*Node, error) {
	if id == uuid.Nil {
		return nil, failure(ErrNodeNotFound)
	}
	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return node, nil
}

func (s *service) mapNotFound(err error) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return failure(ErrNodeNotFound, map[string]any{"node_id": notFound.Key})
	}
	return err
}

func (s *service) apply(ctx context.Context, navigationID uuid.UUID, locale string, change HierarchyChange) error {
	if change.Empty() {
		return nil
	}
	if err := s.repo.ApplyHierarchy(ctx, change); err != nil {
		return err
	}
	s.invalidate(ctx, navigationID, locale)
	return nil
}

func (s *service) lock(ctx context.Context, navigationID uuid.UUID) (func(), error) {
	return s.locker.Acquire(ctx, locks.NavigationKey(navigationID))
}

func (s *service) invalidate(ctx context.Context, navigationID uuid.UUID, locale string) {
	if cache := RequestCacheFrom(ctx); cache != nil {
		cache.Invalidate(navigationID, locale)
	}
}

func (s *service) locale(locale string) string {
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		return trimmed
	}
	return s.defaultLocale
}

func (s *service) log(ctx context.Context, navigationID uuid.UUID, locale string, nodeID uuid.UUID) interfaces.Logger {
	return logging.WithNavigationContext(s.logger.WithContext(ctx), navigationID.String(), locale, nodeID.String())
}

func (s *service) nextID() uuid.UUID {
	if s.newID == nil {
		return uuid.New()
	}
	id := s.newID()
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func findNode(flat []*Node, id uuid.UUID) *Node {
	for _, node := range flat {
		if node.ID == id {
			return node
		}
	}
	return nil
}

func containsNode(flat []*Node, id uuid.UUID) bool {
	return findNode(flat, id) != nil
}

// isDescendant reports whether candidate sits below ancestor.
func isDescendant(flat []*Node, ancestor, candidate uuid.UUID) bool {
	parents := make(map[uuid.UUID]uuid.UUID, len(flat))
	for _, node := range flat {
		parents[node.ID] = parentKey(node.ParentID)
	}
	seen := make(map[uuid.UUID]bool, len(flat))
	for current := parents[candidate]; current != uuid.Nil; current = parents[current] {
		if current == ancestor {
			return true
		}
		if seen[current] {
			return false
		}
		seen[current] = true
	}
	return false
}

// descendantIDs collects every node below id depth first.
func descendantIDs(flat []*Node, id uuid.UUID) []uuid.UUID {
	groups := groupByParent(flat)
	var out []uuid.UUID
	seen := map[uuid.UUID]bool{id: true}

	var walk func(uuid.UUID)
	walk = func(parent uuid.UUID) {
		for _, child := range groups[parent] {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			out = append(out, child.ID)
			walk(child.ID)
		}
	}
	walk(id)
	return out
}

func previousSibling(flat []*Node, target *Node, exclude uuid.UUID) *uuid.UUID {
	var prev *uuid.UUID
	for _, sibling := range groupByParent(flat)[parentKey(target.ParentID)] {
		if sibling.ID == target.ID {
			return prev
		}
		if sibling.ID == exclude {
			continue
		}
		id := sibling.ID
		prev = &id
	}
	return prev
}

func levelOf(flat []*Node, id uuid.UUID) int {
	parents := make(map[uuid.UUID]uuid.UUID, len(flat))
	for _, node := range flat {
		parents[node.ID] = parentKey(node.ParentID)
	}
	if _, ok := parents[id]; !ok {
		return 0
	}
	level := 1
	for current := parents[id]; current != uuid.Nil && level <= len(flat); current = parents[current] {
		level++
	}
	return level
}

func (s *service) emitActivity(ctx context.Context, verb string, node *Node, meta map[string]any) {
	if !s.activity.Enabled() || node == nil {
		return
	}
	if meta == nil {
		meta = make(map[string]any, 2)
	}
	meta["navigation_id"] = node.NavigationID.String()
	meta["locale"] = node.Locale
	if err := s.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ObjectType: "navigation_node",
		ObjectID:   node.ID.String(),
		Metadata:   meta,
	}); err != nil {
		s.log(ctx, node.NavigationID, node.Locale, node.ID).Warn("node.activity.failed", "verb", verb, "error", err)
	}
}
