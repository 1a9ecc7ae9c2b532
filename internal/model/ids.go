package model

import (
	"strings"

	"github.com/google/uuid"
)

const tempIDPrefix = SentinelID + "-"

// TempID returns a client-side identifier for a row created during editing.
// Temp ids are addressable by the sub-entity handlers but map back to
// "absent" on serialization, like the bare sentinel.
func TempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsPersisted reports whether id was assigned by the backend.
func IsPersisted(id string) bool {
	return id != "" && id != SentinelID && !strings.HasPrefix(id, tempIDPrefix)
}
