package notification

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSink records messages instead of delivering them. Secrets are not logged.
type LogSink struct {
	Logger logrus.FieldLogger
}

func (s LogSink) Deliver(_ context.Context, msg Message) error {
	s.Logger.WithFields(logrus.Fields{
		"type":  msg.Type,
		"email": msg.Email,
	}).Info("notification suppressed")
	return nil
}
