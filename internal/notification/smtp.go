package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
)

// SMTPMailer sends the plain text part of an Email over SMTPS.
type SMTPMailer struct {
	client      *goemail.SMTP
	mailName    string
	mailAddress string
}

func NewSMTPMailer(host, user, password, from string, skipVerify bool) (*SMTPMailer, error) {
	if host == "" || user == "" || password == "" {
		return &SMTPMailer{}, nil
	}
	u, err := url.Parse(fmt.Sprintf("smtps://%v:%v@%v", url.QueryEscape(user), url.QueryEscape(password), host))
	if err != nil {
		return nil, err
	}
	a, err := mail.ParseAddress(from)
	if err != nil {
		return nil, err
	}
	client, err := goemail.NewSMTP(u.String(), &tls.Config{InsecureSkipVerify: skipVerify})
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{
		client:      client,
		mailName:    a.Name,
		mailAddress: a.Address,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if m.client == nil {
		return ErrMailerNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := goemail.NewMessage(m.mailAddress, email.Subject, email.Text)
	msg.SetName(m.mailName)
	msg.AddBCC(email.To)
	return m.client.Send(msg)
}
