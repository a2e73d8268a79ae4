package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/setvote/api/internal/core/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uuid.UUID, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func resolveIdentity(t *testing.T, mutate func(*http.Request)) domain.Identity {
	t.Helper()
	resolver := NewIdentityResolver([]byte(testSecret))

	var got domain.Identity
	handler := resolver.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/votes", nil)
	req.RemoteAddr = "192.0.2.10:54321"
	if mutate != nil {
		mutate(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestIdentityFromCookie(t *testing.T) {
	userID := uuid.New()

	identity := resolveIdentity(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, userID, testSecret)})
	})

	assert.Equal(t, domain.UserIdentity(userID), identity)
}

func TestIdentityFromBearerHeader(t *testing.T) {
	userID := uuid.New()

	identity := resolveIdentity(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+signToken(t, userID, testSecret))
	})

	assert.Equal(t, domain.UserIdentity(userID), identity)
}

func TestIdentityGuestWithoutToken(t *testing.T) {
	identity := resolveIdentity(t, nil)

	assert.True(t, identity.IsGuest())
	assert.Equal(t, domain.GuestIdentity("192.0.2.10"), identity, "guest key derives from the peer address without the port")
}

func TestIdentityGuestPerForwardedAddress(t *testing.T) {
	first := resolveIdentity(t, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.2")
	})
	second := resolveIdentity(t, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "198.51.100.2, 10.0.0.2")
	})

	assert.True(t, first.IsGuest())
	assert.NotEqual(t, first, second, "different visitors must not share a guest bucket")
	assert.Equal(t, domain.GuestIdentity("198.51.100.1"), first)
}

func TestIdentityInvalidTokenFallsBackToGuest(t *testing.T) {
	identity := resolveIdentity(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, uuid.New(), "wrong-secret")})
	})

	assert.True(t, identity.IsGuest())
}

func TestIdentityExpiredTokenFallsBackToGuest(t *testing.T) {
	userID := uuid.New()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	identity := resolveIdentity(t, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+expired)
	})

	assert.True(t, identity.IsGuest())
}
