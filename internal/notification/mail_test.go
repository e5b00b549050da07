package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []Email
}

func (m *fakeMailer) Send(_ context.Context, email Email) error {
	m.sent = append(m.sent, email)
	return nil
}

func TestMailSink_Verification(t *testing.T) {
	mailer := &fakeMailer{}
	sink := NewMailSink(mailer, "https://money.example.com/")

	require.NoError(t, sink.Deliver(context.Background(), VerificationMessage("a@x.com", "abc-123")))
	require.Len(t, mailer.sent, 1)

	email := mailer.sent[0]
	assert.Equal(t, "a@x.com", email.To)
	assert.Equal(t, "Email Verify", email.Subject)
	assert.Contains(t, email.HTML, `href="https://money.example.com/auth/verify/abc-123"`)
	assert.Contains(t, email.Text, "https://money.example.com/auth/verify/abc-123")
}

func TestMailSink_UserPasswordEscapesName(t *testing.T) {
	mailer := &fakeMailer{}
	sink := NewMailSink(mailer, "http://localhost:8080")

	require.NoError(t, sink.Deliver(context.Background(), UserPasswordMessage("b@x.com", "<b>Bob</b>", "Abc123def456")))
	require.Len(t, mailer.sent, 1)

	email := mailer.sent[0]
	assert.Equal(t, "User password", email.Subject)
	assert.Contains(t, email.HTML, "Abc123def456")
	assert.Contains(t, email.HTML, "&lt;b&gt;Bob&lt;/b&gt;")
	assert.NotContains(t, email.HTML, "<b>Bob</b>")
	assert.Contains(t, email.HTML, "only copy we send")
	assert.NotContains(t, email.HTML, "change it")
}

func TestMailSink_RejectsInvalid(t *testing.T) {
	mailer := &fakeMailer{}
	sink := NewMailSink(mailer, "")
	require.ErrorIs(t, sink.Deliver(context.Background(), Message{Type: "sms", Email: "a@x.com"}), ErrInvalidMessage)
	assert.Empty(t, mailer.sent)
}

func TestResendMailer_Send(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/emails", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	m := NewResendMailer("re_test", "Expenses <no-reply@example.com>")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	m.client.BaseURL = base

	err = m.Send(context.Background(), Email{To: "a@x.com", Subject: "Email Verify", HTML: "<p>hi</p>", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, "Email Verify", got["subject"])
	assert.Equal(t, []any{"a@x.com"}, got["to"])
}

func TestResendMailer_NotConfigured(t *testing.T) {
	m := NewResendMailer("", "")
	require.ErrorIs(t, m.Send(context.Background(), Email{To: "a@x.com"}), ErrMailerNotConfigured)

	s, err := NewSMTPMailer("", "", "", "", false)
	require.NoError(t, err)
	require.ErrorIs(t, s.Send(context.Background(), Email{To: "a@x.com"}), ErrMailerNotConfigured)
}
