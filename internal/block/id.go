package block

import "github.com/google/uuid"

// NewID returns a fresh block identity. Identities are opaque and only
// compared for equality.
func NewID() string {
	return uuid.NewString()
}
