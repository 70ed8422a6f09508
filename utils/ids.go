package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ID prefixes kept from the legacy schema so existing rows stay readable
// alongside new ones. The random part is UUID-derived instead of the old
// 6-9 character Math.random tokens, which collided at volume.

// NewSessionID returns a collision-resistant order-session identifier,
// e.g. "SESS-9F8E7D6C5B4A".
func NewSessionID() string {
	return "SESS-" + shortUUID(12)
}

// NewBookingRef returns a customer-facing booking reference,
// e.g. "WNM-3A2B1C0D".
func NewBookingRef() string {
	return "WNM-" + shortUUID(8)
}

// NewVerifyToken returns an email verification token.
func NewVerifyToken() string {
	return "verify_" + uuid.NewString()
}

func shortUUID(n int) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if n > len(id) {
		n = len(id)
	}
	return id[:n]
}
