package kafka

import (
	"context"
	"fmt"
	"slices"

	"unicorn-booking/internal/domain/booking"
	"unicorn-booking/internal/general/config"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Notifier publishes booking notifications as Kafka records keyed by booking id.
type Notifier struct {
	writer messageWriter
}

// NewNotifier builds a synchronous writer bound to the client budgets. MaxAttempts comes from
// config and is always 1, so a failed write is reported instead of retried.
func NewNotifier(cfg *config.Config) *Notifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            cfg.Client.MaxAttempts,
		ReadTimeout:            cfg.Client.ReadTimeout,
		WriteTimeout:           cfg.Client.ReadTimeout,
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
		AllowAutoTopicCreation: true,
		Transport: &kafka.Transport{
			DialTimeout: cfg.Client.ConnectTimeout,
		},
	}

	return &Notifier{writer: w}
}

// Publish writes n to topic. Attributes travel as record headers.
func (notifier *Notifier) Publish(ctx context.Context, topic string, n booking.Notification) error {
	err := notifier.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     []byte(n.BookingID),
		Value:   n.Body,
		Headers: Headers(n.Attributes),
	})
	if err != nil {
		return fmt.Errorf("kafka: write message to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (notifier *Notifier) Close() error {
	return notifier.writer.Close()
}

// Headers renders attributes as record headers in name order, plus the payload content type.
func Headers(attrs map[string]booking.MessageAttribute) []kafka.Header {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	headers := make([]kafka.Header, 0, len(names)+1)
	headers = append(headers, kafka.Header{Key: "content-type", Value: []byte("application/json")})
	for _, name := range names {
		headers = append(headers, kafka.Header{Key: name, Value: []byte(attrs[name].StringValue)})
	}
	return headers
}
