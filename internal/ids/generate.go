package ids

import (
	"crypto/sha256"
	"encoding/base32"

	internalstrings "github.com/amonks/todomvc/internal/strings"
	"github.com/google/uuid"
)

// DefaultLength is the standard length for persisted record IDs.
const DefaultLength = 10

// Generate creates a deterministic, lowercase base32 ID derived from input.
func Generate(input string, length int) string {
	hash := sha256.Sum256([]byte(input))
	encoded := base32.StdEncoding.EncodeToString(hash[:])
	if length <= 0 {
		return ""
	}
	if length > len(encoded) {
		length = len(encoded)
	}
	return internalstrings.NormalizeLower(encoded[:length])
}

// New returns a fresh random ID for a persisted record.
//
// Persisted IDs only use lowercase base32 characters, so they can never
// carry NewPrefix.
func New() string {
	return Generate(uuid.NewString(), DefaultLength)
}
