package nodes

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrNavigationRequired    = errors.New("nodes: navigation id is required")
	ErrNavigationNotFound    = errors.New("nodes: navigation not found")
	ErrNameRequired          = errors.New("nodes: name is required")
	ErrLocaleRequired        = errors.New("nodes: locale is required")
	ErrParentInvalid         = errors.New("nodes: parent node invalid")
	ErrNodeNotFound          = errors.New("nodes: node not found")
	ErrAfterNodeNotFound     = errors.New("nodes: after node not found")
	ErrAfterNodeInvalid      = errors.New("nodes: after node is not a sibling in the target group")
	ErrTargetNodeNotFound    = errors.New("nodes: target node not found")
	ErrPositionInvalid       = errors.New("nodes: position must be before, after or child")
	ErrCycle                 = errors.New("nodes: move would make the node its own ancestor")
	ErrURLReadOnly           = errors.New("nodes: url of a linked node is derived and cannot be edited")
	ErrElementTypeInvalid    = errors.New("nodes: linked element type is invalid")
	ErrLinkedElementNotFound = errors.New("nodes: linked element not found")
	ErrInconsistentOrder     = errors.New("nodes: sibling order is inconsistent")
)

type errorClass struct {
	category goerrors.Category
	code     string
	message  string
}

var errorClasses = map[error]errorClass{
	ErrNavigationRequired:    {goerrors.CategoryValidation, "NODE_NAVIGATION_REQUIRED", "node validation failed"},
	ErrNavigationNotFound:    {goerrors.CategoryValidation, "NODE_NAVIGATION_NOT_FOUND", "node validation failed"},
	ErrNameRequired:          {goerrors.CategoryValidation, "NODE_NAME_REQUIRED", "node validation failed"},
	ErrLocaleRequired:        {goerrors.CategoryValidation, "NODE_LOCALE_REQUIRED", "node validation failed"},
	ErrParentInvalid:         {goerrors.CategoryValidation, "NODE_PARENT_INVALID", "node validation failed"},
	ErrAfterNodeInvalid:      {goerrors.CategoryValidation, "NODE_AFTER_INVALID", "node validation failed"},
	ErrPositionInvalid:       {goerrors.CategoryValidation, "NODE_POSITION_INVALID", "node validation failed"},
	ErrURLReadOnly:           {goerrors.CategoryValidation, "NODE_URL_READ_ONLY", "node validation failed"},
	ErrElementTypeInvalid:    {goerrors.CategoryValidation, "NODE_ELEMENT_TYPE_INVALID", "node validation failed"},
	ErrLinkedElementNotFound: {goerrors.CategoryValidation, "NODE_ELEMENT_NOT_FOUND", "node validation failed"},
	ErrNodeNotFound:          {goerrors.CategoryNotFound, "NODE_NOT_FOUND", "node lookup failed"},
	ErrAfterNodeNotFound:     {goerrors.CategoryNotFound, "NODE_AFTER_NOT_FOUND", "node lookup failed"},
	ErrTargetNodeNotFound:    {goerrors.CategoryNotFound, "NODE_TARGET_NOT_FOUND", "node lookup failed"},
	ErrCycle:                 {goerrors.CategoryConflict, "NODE_CYCLE", "node move rejected"},
	ErrInconsistentOrder:     {goerrors.CategoryInternal, "NODE_ORDER_INCONSISTENT", "node ordering failed"},
}

// failure classifies a domain sentinel with a go-errors category and text
// code. errors.Is against the sentinel keeps working through Unwrap.
func failure(sentinel error, metadata ...map[string]any) error {
	class, ok := errorClasses[sentinel]
	if !ok {
		return sentinel
	}
	err := goerrors.Wrap(sentinel, class.category, class.message).
		WithTextCode(class.code)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata...)
	}
	return err
}
