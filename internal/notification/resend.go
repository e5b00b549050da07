package notification

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

var ErrMailerNotConfigured = errors.New("email sender not configured")

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendMailer{}
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	return &ResendMailer{
		client: resend.NewCustomClient(httpClient, apiKey),
		from:   from,
	}
}

func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	if m.client == nil {
		return ErrMailerNotConfigured
	}
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	})
	return err
}
