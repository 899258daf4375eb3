package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-navtree/internal/locks"
)

const (
	codeInvalidMessage  = "NAVTREE_COMMAND_INVALID"
	codeCanceled        = "NAVTREE_COMMAND_CANCELED"
	codeDeadline        = "NAVTREE_COMMAND_TIMEOUT"
	codeContext         = "NAVTREE_COMMAND_CONTEXT"
	codeNavigationBusy  = "NAVTREE_NAVIGATION_BUSY"
	codeExecutionFailed = "NAVTREE_COMMAND_FAILED"
)

// Domain services already return go-errors values; those pass through so
// their category and text code reach the caller.

func invalidMessage(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command message").
		WithTextCode(codeInvalidMessage)
}

func interrupted(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command deadline exceeded").
			WithTextCode(codeDeadline)
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command cancelled").
			WithTextCode(codeCanceled)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(codeContext)
	}
}

func failed(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, locks.ErrLockUnavailable):
		return goerrors.Wrap(err, goerrors.CategoryConflict, "navigation is being modified").
			WithTextCode(codeNavigationBusy)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return interrupted(err)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode(codeExecutionFailed)
	}
}
