package notification

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes messages as JSON to a topic; the notifier process
// consumes them and sends the emails.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

func (s *KafkaSink) Deliver(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Email),
		Value: value,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

type Consumer struct {
	reader messageReader
	sink   Sink
	logger logrus.FieldLogger
}

func NewConsumer(brokers []string, topic, groupID string, sink Sink, logger logrus.FieldLogger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, sink: sink, logger: logger}
}

// Run consumes until ctx is cancelled. Malformed payloads and delivery
// failures are logged and committed so they are not redelivered.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		c.handle(ctx, m)
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.WithError(err).WithField("offset", m.Offset).Warn("commit failed")
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	entry := c.logger.WithFields(logrus.Fields{"partition": m.Partition, "offset": m.Offset})
	var msg Message
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		entry.WithError(err).Warn("invalid message format")
		return
	}
	if err := msg.Validate(); err != nil {
		entry.WithError(err).Warn("invalid message format")
		return
	}
	if err := c.sink.Deliver(ctx, msg); err != nil {
		entry.WithError(err).WithField("email", msg.Email).Error("notification delivery failed")
		return
	}
	entry.WithField("email", msg.Email).Info("notification sent")
}
