package notification

import (
	"context"
	"errors"
	"strings"
)

type MessageType string

const (
	TypeVerification MessageType = "verification"
	TypeUserPassword MessageType = "user_password"
)

var (
	ErrInvalidMessage = errors.New("invalid notification message")
	ErrQueueFull      = errors.New("notification queue full")
	ErrClosed         = errors.New("notification dispatcher closed")
)

// Message is the payload handed to a Sink. Only the fields relevant to Type
// are set.
type Message struct {
	Type     MessageType `json:"type"`
	Email    string      `json:"email"`
	Token    string      `json:"token,omitempty"`
	FullName string      `json:"full_name,omitempty"`
	Password string      `json:"password,omitempty"`
}

func VerificationMessage(email, token string) Message {
	return Message{Type: TypeVerification, Email: email, Token: token}
}

func UserPasswordMessage(email, fullName, password string) Message {
	return Message{Type: TypeUserPassword, Email: email, FullName: fullName, Password: password}
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return ErrInvalidMessage
	}
	switch m.Type {
	case TypeVerification:
		if m.Token == "" {
			return ErrInvalidMessage
		}
	case TypeUserPassword:
		if m.Password == "" {
			return ErrInvalidMessage
		}
	default:
		return ErrInvalidMessage
	}
	return nil
}

type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}

type SinkFunc func(ctx context.Context, msg Message) error

func (f SinkFunc) Deliver(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
