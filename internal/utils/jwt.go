package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultSessionTTL = 20 * time.Minute

type JWTManager struct {
	Secret    []byte
	Issuer    string
	Algorithm string
	TTL       time.Duration
	Now       func() time.Time
}

// SessionClaims is the payload of a session token:
// {sub: email, id: integer, role: string, status: boolean, exp: unix}.
type SessionClaims struct {
	Email  string `json:"sub"`
	UserID *int64 `json:"id"`
	Role   string `json:"role,omitempty"`
	Status *bool  `json:"status,omitempty"`
	jwt.RegisteredClaims
}

func (m JWTManager) Issue(userID int64, email string, role string, active bool) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl())
	claims := SessionClaims{
		Email:  email,
		UserID: &userID,
		Role:   role,
		Status: &active,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := m.Encode(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (m JWTManager) Encode(claims SessionClaims) (string, error) {
	method := jwt.GetSigningMethod(m.algorithm())
	if method == nil || len(m.Secret) == 0 {
		return "", ErrInvalidToken
	}
	return jwt.NewWithClaims(method, claims).SignedString(m.Secret)
}

// Decode verifies signature and expiry together. Forged, malformed and
// expired tokens all yield ErrInvalidToken.
func (m JWTManager) Decode(tokenString string) (*SessionClaims, error) {
	if len(m.Secret) == 0 {
		return nil, ErrInvalidToken
	}
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.algorithm()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	}, options...)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m JWTManager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

func (m JWTManager) ttl() time.Duration {
	if m.TTL <= 0 {
		return DefaultSessionTTL
	}
	return m.TTL
}

func (m JWTManager) algorithm() string {
	if m.Algorithm == "" {
		return jwt.SigningMethodHS256.Alg()
	}
	return m.Algorithm
}
