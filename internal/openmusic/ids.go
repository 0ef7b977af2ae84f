package openmusic

import (
	"strings"

	"github.com/google/uuid"
)

// newID builds an opaque prefixed identifier like "album-1f3b9c2a4d5e6f70".
// Random ids avoid leaking insertion order through the API.
func newID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + raw[:16]
}
