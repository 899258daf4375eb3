package navigations

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrNameRequired       = errors.New("navigations: name is required")
	ErrHandleInvalid      = errors.New("navigations: handle is invalid")
	ErrHandleExists       = errors.New("navigations: handle already exists")
	ErrIDExists           = errors.New("navigations: navigation id already exists")
	ErrNavigationNotFound = errors.New("navigations: navigation not found")
	ErrSettingsInvalid    = errors.New("navigations: settings are invalid")
)

var errorClasses = map[error]struct {
	category goerrors.Category
	code     string
}{
	ErrNameRequired:       {goerrors.CategoryValidation, "NAVIGATION_NAME_REQUIRED"},
	ErrHandleInvalid:      {goerrors.CategoryValidation, "NAVIGATION_HANDLE_INVALID"},
	ErrSettingsInvalid:    {goerrors.CategoryValidation, "NAVIGATION_SETTINGS_INVALID"},
	ErrHandleExists:       {goerrors.CategoryConflict, "NAVIGATION_HANDLE_EXISTS"},
	ErrIDExists:           {goerrors.CategoryConflict, "NAVIGATION_ID_EXISTS"},
	ErrNavigationNotFound: {goerrors.CategoryNotFound, "NAVIGATION_NOT_FOUND"},
}

func failure(sentinel error, metadata map[string]any) error {
	class, ok := errorClasses[sentinel]
	if !ok {
		return sentinel
	}
	err := goerrors.Wrap(sentinel, class.category, sentinel.Error()).WithTextCode(class.code)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

// NotFoundError is returned when a navigation cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
