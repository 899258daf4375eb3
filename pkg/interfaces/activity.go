package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord mirrors the go-users activity record so navigation change
// sinks and go-users share one type.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink stores activity records, typically a go-users activity store.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
