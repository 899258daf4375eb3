package navigations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-navtree/internal/identity"
	"github.com/goliatone/go-navtree/internal/locks"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/pkg/activity"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// Service exposes navigation registry operations.
type Service interface {
	Create(ctx context.Context, input CreateNavigationInput) (*Navigation, error)
	Get(ctx context.Context, id uuid.UUID) (*Navigation, error)
	GetByHandle(ctx context.Context, handle string) (*Navigation, error)
	List(ctx context.Context) ([]*Navigation, error)
	Update(ctx context.Context, input UpdateNavigationInput) (*Navigation, error)
	// Delete removes the navigation and every node it owns.
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// NodeCleaner removes the nodes owned by a navigation.
type NodeCleaner interface {
	DeleteByNavigation(ctx context.Context, navigationID uuid.UUID) (int, error)
}

// ServiceOption configures navigation service behaviour.
type ServiceOption func(*service)

// WithClock overrides the internal time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithNodeCleaner cascades navigation deletes to their nodes.
func WithNodeCleaner(cleaner NodeCleaner) ServiceOption {
	return func(s *service) {
		s.nodes = cleaner
	}
}

// WithLocker serialises handle reservation.
func WithLocker(locker locks.Locker) ServiceOption {
	return func(s *service) {
		if locker != nil {
			s.locker = locker
		}
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

// WithActivityEmitter reports registry changes to activity hooks.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.activity = emitter
		}
	}
}

type service struct {
	repo     NavigationRepository
	nodes    NodeCleaner
	locker   locks.Locker
	logger   interfaces.Logger
	activity *activity.Emitter
	now      func() time.Time
}

// NewService constructs a navigation registry service.
func NewService(repo NavigationRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		locker: locks.NewLocal(),
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NormalizeHandle turns a handle or display name into its stored form.
func NormalizeHandle(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", failure(ErrHandleInvalid, nil)
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" || !slug.IsValid(normalized) {
		return "", failure(ErrHandleInvalid, map[string]any{"handle": trimmed})
	}
	return normalized, nil
}

func (s *service) Create(ctx context.Context, input CreateNavigationInput) (*Navigation, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, failure(ErrNameRequired, nil)
	}
	source := input.Handle
	if strings.TrimSpace(source) == "" {
		source = name
	}
	handle, err := NormalizeHandle(source)
	if err != nil {
		return nil, err
	}
	if err := input.Settings.Validate(); err != nil {
		return nil, settingsFailure(err)
	}

	release, err := s.locker.Acquire(ctx, locks.HandleKey(handle))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureHandleFree(ctx, handle, uuid.Nil); err != nil {
		return nil, err
	}

	id, err := s.newID(ctx, handle, input.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	record := &Navigation{
		ID:        id,
		Name:      name,
		Handle:    handle,
		Settings:  input.Settings.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(ctx, created).Info("navigation.created", "handle", created.Handle)
	s.emitActivity(ctx, "create", created, nil)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Navigation, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return record, nil
}

func (s *service) GetByHandle(ctx context.Context, handle string) (*Navigation, error) {
	normalized, err := NormalizeHandle(handle)
	if err != nil {
		return nil, failure(ErrNavigationNotFound, map[string]any{"handle": handle})
	}
	record, err := s.repo.GetByHandle(ctx, normalized)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return record, nil
}

func (s *service) List(ctx context.Context) ([]*Navigation, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, input UpdateNavigationInput) (*Navigation, error) {
	record, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, failure(ErrNameRequired, nil)
		}
		record.Name = name
	}
	if input.Settings != nil {
		if err := input.Settings.Validate(); err != nil {
			return nil, settingsFailure(err)
		}
		record.Settings = input.Settings.Clone()
	}
	if input.Handle != nil {
		handle, err := NormalizeHandle(*input.Handle)
		if err != nil {
			return nil, err
		}
		if handle != record.Handle {
			release, err := s.locker.Acquire(ctx, locks.HandleKey(handle))
			if err != nil {
				return nil, err
			}
			defer release()
			if err := s.ensureHandleFree(ctx, handle, record.ID); err != nil {
				return nil, err
			}
			record.Handle = handle
		}
	}

	record.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, mapNotFound(err)
	}
	s.log(ctx, updated).Info("navigation.updated", "handle", updated.Handle)
	s.emitActivity(ctx, "update", updated, nil)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	removed := 0
	if s.nodes != nil {
		removed, err = s.nodes.DeleteByNavigation(ctx, record.ID)
		if err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, record.ID); err != nil {
		return mapNotFound(err)
	}
	s.log(ctx, record).Info("navigation.deleted", "handle", record.Handle, "nodes_removed", removed)
	s.emitActivity(ctx, "delete", record, map[string]any{"nodes_removed": removed})
	return nil
}

func (s *service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// newID prefers the handle derived id and falls back to a random one when a
// renamed navigation still owns it.
func (s *service) newID(ctx context.Context, handle string, requested *uuid.UUID) (uuid.UUID, error) {
	if requested != nil && *requested != uuid.Nil {
		return *requested, nil
	}
	id := identity.NavigationUUID(handle)
	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return uuid.New(), nil
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return id, nil
	}
	return uuid.Nil, err
}

func (s *service) ensureHandleFree(ctx context.Context, handle string, owner uuid.UUID) error {
	existing, err := s.repo.GetByHandle(ctx, handle)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	if existing.ID == owner {
		return nil
	}
	return failure(ErrHandleExists, map[string]any{"handle": handle})
}

func (s *service) log(ctx context.Context, record *Navigation) interfaces.Logger {
	return logging.WithNavigationContext(s.logger.WithContext(ctx), record.ID.String(), "", "")
}

func (s *service) emitActivity(ctx context.Context, verb string, record *Navigation, meta map[string]any) {
	if !s.activity.Enabled() {
		return
	}
	if meta == nil {
		meta = make(map[string]any, 1)
	}
	meta["handle"] = record.Handle
	if err := s.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ObjectType: "navigation",
		ObjectID:   record.ID.String(),
		Metadata:   meta,
	}); err != nil {
		s.log(ctx, record).Warn("navigation.activity.failed", "verb", verb, "error", err)
	}
}

func mapNotFound(err error) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return failure(ErrNavigationNotFound, map[string]any{"key": notFound.Key})
	}
	return err
}

func settingsFailure(err error) error {
	return failure(ErrSettingsInvalid, map[string]any{"cause": err.Error()})
}
