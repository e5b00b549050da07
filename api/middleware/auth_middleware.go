package middleware

import (
	"net/http"
	"strings"

	"expensetracker/internal/service"
	"expensetracker/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthMiddleware struct {
	JWT    *utils.JWTManager
	Logger logrus.FieldLogger
}

// Authenticate resolves the bearer token of r. It fails with
// ErrMissingCredential when there is no token, ErrInvalidToken when the token
// does not decode and ErrMalformedClaims when id or email is absent.
func (m AuthMiddleware) Authenticate(r *http.Request) (Identity, error) {
	token := extractBearerToken(r)
	if token == "" {
		return Identity{}, service.ErrMissingCredential
	}
	if m.JWT == nil {
		return Identity{}, service.ErrInvalidToken
	}
	claims, err := m.JWT.Decode(token)
	if err != nil {
		return Identity{}, service.ErrInvalidToken
	}
	if claims.UserID == nil || strings.TrimSpace(claims.Email) == "" {
		return Identity{}, service.ErrMalformedClaims
	}
	identity := Identity{
		ID:    *claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}
	if claims.Status != nil {
		identity.Active = *claims.Status
	}
	return identity, nil
}

func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := m.Authenticate(c.Request())
		if err != nil {
			m.logger().WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).Debug("request rejected")
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		SetIdentity(c, identity)
		return next(c)
	}
}

func (m AuthMiddleware) logger() logrus.FieldLogger {
	if m.Logger == nil {
		return logrus.StandardLogger()
	}
	return m.Logger
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
