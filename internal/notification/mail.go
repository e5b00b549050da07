package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// MailSink renders a Message into an Email and hands it to a Mailer.
type MailSink struct {
	mailer  Mailer
	baseURL string
}

func NewMailSink(mailer Mailer, appBaseURL string) *MailSink {
	return &MailSink{mailer: mailer, baseURL: strings.TrimRight(appBaseURL, "/")}
}

func (s *MailSink) Deliver(ctx context.Context, msg Message) error {
	email, err := s.Render(msg)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, email)
}

func (s *MailSink) Render(msg Message) (Email, error) {
	if err := msg.Validate(); err != nil {
		return Email{}, err
	}
	switch msg.Type {
	case TypeVerification:
		link := s.VerificationLink(msg.Token)
		html, err := render("email_verify.html", struct{ Link string }{Link: link})
		if err != nil {
			return Email{}, err
		}
		return Email{
			To:      msg.Email,
			Subject: "Email Verify",
			HTML:    html,
			Text:    fmt.Sprintf("Verify your email: %s", link),
		}, nil
	default:
		data := struct{ FullName, Password string }{FullName: msg.FullName, Password: msg.Password}
		html, err := render("register_password.html", data)
		if err != nil {
			return Email{}, err
		}
		return Email{
			To:      msg.Email,
			Subject: "User password",
			HTML:    html,
			Text:    fmt.Sprintf("Hello, %s. Your password is: %s", msg.FullName, msg.Password),
		}, nil
	}
}

func (s *MailSink) VerificationLink(token string) string {
	return fmt.Sprintf("%s/auth/verify/%s", s.baseURL, token)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
