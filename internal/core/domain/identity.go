package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

type IdentityKind string

const (
	IdentityUser  IdentityKind = "user"
	IdentityGuest IdentityKind = "guest"
)

// Identity is the dedup and rate-limit key for a voter. It is either a stable
// authenticated user id or a guest key derived from the client network address,
// so that guest quotas apply per visitor rather than to one shared bucket.
type Identity struct {
	Kind IdentityKind
	Key  string
}

func UserIdentity(userID uuid.UUID) Identity {
	return Identity{Kind: IdentityUser, Key: userID.String()}
}

// GuestIdentity derives a guest identity from a client address. The address is
// hashed so raw IPs never reach the votes table.
func GuestIdentity(clientAddr string) Identity {
	sum := sha256.Sum256([]byte(clientAddr))
	return Identity{Kind: IdentityGuest, Key: hex.EncodeToString(sum[:8])}
}

func (i Identity) IsGuest() bool {
	return i.Kind == IdentityGuest
}

// String returns the storage form, e.g. "user:<uuid>" or "guest:<hash>".
func (i Identity) String() string {
	return fmt.Sprintf("%s:%s", i.Kind, i.Key)
}
