package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserIdentityString(t *testing.T) {
	id := uuid.New()
	ident := UserIdentity(id)

	assert.False(t, ident.IsGuest())
	assert.Equal(t, "user:"+id.String(), ident.String())
}

func TestGuestIdentityStablePerAddress(t *testing.T) {
	a := GuestIdentity("203.0.113.7")
	b := GuestIdentity("203.0.113.7")
	c := GuestIdentity("203.0.113.8")

	assert.True(t, a.IsGuest())
	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Key, c.Key)
}

func TestGuestIdentityDoesNotExposeAddress(t *testing.T) {
	ident := GuestIdentity("198.51.100.23")
	assert.NotContains(t, ident.String(), "198.51.100.23")
}
