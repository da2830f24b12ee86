package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random UUID v4.
func NewID() string {
	return uuid.NewString()
}

// ShortID returns the first eight hex digits of a fresh UUID, for request tracing.
func ShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ContentID returns a name-based UUID (v5) for data; equal data gives equal IDs.
func ContentID(data []byte) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, data).String()
}
