package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expensetracker/internal/entity"
	"expensetracker/internal/notification"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegistrationMode string

const (
	ModeVerifyLink        RegistrationMode = "verify_link"
	ModeGeneratedPassword RegistrationMode = "generated_password"
	ModeOpen              RegistrationMode = "open"
)

type AuthConfig struct {
	// RequireActive rejects logins of accounts that have not completed
	// verification.
	RequireActive bool
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type SessionIssuer interface {
	IssueSession(user entity.User) (string, time.Time, error)
}

type TokenIssuer interface {
	Issue() (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, msg notification.Message) error
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password exceeds 72 bytes", ErrInvalidInput)
	}
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports false for a malformed stored hash.
func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type UUIDTokenIssuer struct{}

func (UUIDTokenIssuer) Issue() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
