package core

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"fleetbackend/utils"
)

// ID prefixes of the fleet entities
const (
	UserIDPrefix     = "u"
	PositionIDPrefix = "pos"
	SessionIDPrefix  = "sess"
)

// NewID generates a new ULID with the given prefix.
// The format is: prefix_ULID
// Example: core.NewID(core.UserIDPrefix) returns "u_01G0EZ1XTM37C5X11SQTDNCTM1"
func NewID(prefix string) string {
	utils.AssertInvariant(prefix != "" && strings.TrimSpace(prefix) != "", "prefix cannot be empty")

	// ULIDs sort by creation time, so positions and drivers list in insertion order
	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)

	// Prefix is always lowercased
	return strings.ToLower(strings.TrimSpace(prefix)) + "_" + id.String()
}

// IsValidULID checks if the given string is a valid ULID format with prefix.
// The format should be: prefix_ULID where ULID is 26 characters, base32 encoded.
// Returns true if valid, false otherwise.
func IsValidULID(id string) bool {
	if id == "" {
		return false
	}

	// Exactly one underscore separates prefix and ULID
	parts := strings.Split(id, "_")
	if len(parts) != 2 {
		return false
	}

	prefix := parts[0]
	ulidPart := parts[1]

	// Prefix: non-empty, lowercase alphanumeric
	if prefix == "" {
		return false
	}
	for _, r := range prefix {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}

	// ULID part: exactly 26 characters
	if len(ulidPart) != 26 {
		return false
	}

	// Crockford base32: 0-9, A-Z excluding I, L, O, U
	for _, r := range ulidPart {
		if !((r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z' && r != 'I' && r != 'L' && r != 'O' && r != 'U')) {
			return false
		}
	}

	// Parse catches timestamps that overflow 48 bits
	_, err := ulid.Parse(ulidPart)
	return err == nil
}

// HasIDPrefix reports whether id is a valid ULID carrying the given entity prefix
func HasIDPrefix(id, prefix string) bool {
	return IsValidULID(id) && strings.HasPrefix(id, prefix+"_")
}
