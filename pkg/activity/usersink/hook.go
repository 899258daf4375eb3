// Package usersink forwards activity events to a go-users activity sink.
package usersink

import (
	"context"
	"errors"
	"maps"
	"strings"

	"github.com/goliatone/go-navtree/pkg/activity"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// ErrSinkRequired is returned when the hook has no sink to write to.
var ErrSinkRequired = errors.New("usersink: sink is required")

// Hook maps activity events onto go-users activity records.
type Hook struct {
	Sink interfaces.ActivitySink
}

func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return ErrSinkRequired
	}
	return h.Sink.Log(ctx, Record(event))
}

// Record converts event into an activity record. Identifiers that are not
// UUIDs are left as uuid.Nil.
func Record(event activity.Event) usertypes.ActivityRecord {
	data := make(map[string]any, len(event.Metadata)+2)
	maps.Copy(data, event.Metadata)
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = append([]string(nil), event.Recipients...)
	}
	return usertypes.ActivityRecord{
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
}

func parseUUID(value string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}
