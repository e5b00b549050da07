package notification

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	SinkMail  = "mail"
	SinkKafka = "kafka"
	SinkLog   = "log"

	MailerResend = "resend"
	MailerSMTP   = "smtp"
)

type Settings struct {
	Sink       string
	AppBaseURL string

	KafkaBrokers []string
	KafkaTopic   string

	Mailer         string
	ResendAPIKey   string
	MailFrom       string
	SMTPHost       string
	SMTPUser       string
	SMTPPassword   string
	SMTPSkipVerify bool
}

func NewMailer(s Settings) (Mailer, error) {
	switch s.Mailer {
	case "", MailerResend:
		return NewResendMailer(s.ResendAPIKey, s.MailFrom), nil
	case MailerSMTP:
		return NewSMTPMailer(s.SMTPHost, s.SMTPUser, s.SMTPPassword, s.MailFrom, s.SMTPSkipVerify)
	default:
		return nil, fmt.Errorf("unknown mailer %q", s.Mailer)
	}
}

// NewSink returns the sink selected by s and a func releasing its resources.
func NewSink(s Settings, logger logrus.FieldLogger) (Sink, func() error, error) {
	noop := func() error { return nil }
	switch s.Sink {
	case "", SinkMail:
		mailer, err := NewMailer(s)
		if err != nil {
			return nil, nil, err
		}
		return NewMailSink(mailer, s.AppBaseURL), noop, nil
	case SinkKafka:
		sink := NewKafkaSink(s.KafkaBrokers, s.KafkaTopic)
		return sink, sink.Close, nil
	case SinkLog:
		return LogSink{Logger: logger}, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown notification sink %q", s.Sink)
	}
}
