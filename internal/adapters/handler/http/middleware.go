package http

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/setvote/api/internal/core/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityResolver attaches a voter identity to every request: the user id
// from a valid access token when one is present, otherwise a guest identity
// derived from the client address. A malformed token degrades to guest rather
// than failing the request; voting never requires authentication.
type IdentityResolver struct {
	jwtSecret []byte
}

func NewIdentityResolver(jwtSecret []byte) *IdentityResolver {
	return &IdentityResolver{
		jwtSecret: jwtSecret,
	}
}

func (m *IdentityResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := m.resolve(r)
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom returns the identity the middleware attached. The fallback
// guest identity only triggers for handlers mounted outside the middleware,
// which is a wiring mistake, not a runtime condition.
func IdentityFrom(ctx context.Context) domain.Identity {
	if identity, ok := ctx.Value(identityKey).(domain.Identity); ok {
		return identity
	}
	return domain.GuestIdentity("unknown")
}

func (m *IdentityResolver) resolve(r *http.Request) domain.Identity {
	if userID, ok := m.userFromToken(r); ok {
		return domain.UserIdentity(userID)
	}
	return domain.GuestIdentity(clientAddr(r))
}

func (m *IdentityResolver) userFromToken(r *http.Request) (uuid.UUID, bool) {
	raw := bearerToken(r)
	if raw == "" {
		if cookie, err := r.Cookie("access_token"); err == nil {
			raw = cookie.Value
		}
	}
	if raw == "" {
		return uuid.Nil, false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// clientAddr picks the client address for guest identity derivation: the
// first X-Forwarded-For hop when a proxy set one, otherwise the peer address.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
