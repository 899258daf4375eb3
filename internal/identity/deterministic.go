// Package identity derives stable ids for navigations and seeded nodes so
// the same handle or node path maps to the same record everywhere.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-navtree"

// UUID hashes key into a UUID. Empty keys give uuid.Nil.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err == nil && id != uuid.Nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}

// NavigationUUID returns the id for a navigation handle. Handles compare
// case-insensitively.
func NavigationUUID(handle string) uuid.UUID {
	handle = strings.ToLower(strings.TrimSpace(handle))
	if handle == "" {
		return uuid.Nil
	}
	return UUID(scoped("navigation", handle))
}

// NodeUUID returns the id for a node seeded under a navigation, keyed by the
// slash-joined names from the root down to the node.
func NodeUUID(navigationID uuid.UUID, locale, path string) uuid.UUID {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if navigationID == uuid.Nil || path == "" {
		return uuid.Nil
	}
	return UUID(scoped("node", navigationID.String(), strings.ToLower(strings.TrimSpace(locale)), path))
}

func scoped(kind string, parts ...string) string {
	return namespace + ":" + kind + ":" + strings.Join(parts, ":")
}
