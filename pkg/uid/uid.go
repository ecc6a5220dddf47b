package uid

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSessionID returns a random table ID without dashes.
func GenerateSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateMatchID returns a random ID for one finished match.
func GenerateMatchID() string {
	return uuid.NewString()
}
