package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
)

const contextIdentityKey = "auth_identity"

type identityKey struct{}

// Identity is the caller resolved from a session token. Role is empty when
// the token carries none.
type Identity struct {
	ID     int64
	Email  string
	Role   string
	Active bool
}

func SetIdentity(c echo.Context, identity Identity) {
	c.Set(contextIdentityKey, identity)
	c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), identity)))
}

func IdentityFromContext(c echo.Context) (Identity, bool) {
	identity, ok := c.Get(contextIdentityKey).(Identity)
	return identity, ok
}

func UserIDFromContext(c echo.Context) (int64, bool) {
	identity, ok := IdentityFromContext(c)
	return identity.ID, ok
}

func RoleFromContext(c echo.Context) (string, bool) {
	identity, ok := IdentityFromContext(c)
	return identity.Role, ok
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
