package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"unicorn-booking/internal/domain/booking"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Notifier publishes booking notifications to the headers exchange named by the topic.
type Notifier struct {
	Client *Client
}

// NewNotifier constructs a Notifier using the provided RabbitMQ client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{Client: client}
}

// Publish sends n to the exchange named topic with its attributes as typed headers.
func (notifier *Notifier) Publish(ctx context.Context, topic string, n booking.Notification) error {
	headers, err := Headers(n.Attributes)
	if err != nil {
		return err
	}

	return notifier.Client.PublishMessage(ctx, topic, "", amqp.Publishing{
		Headers:      headers,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.BookingID,
		Timestamp:    time.Now().UTC(),
		Body:         n.Body,
	})
}

// Headers converts message attributes into AMQP headers. Number attributes become
// int64 or float64 by the attribute's declared kind, so a headers exchange sees one
// type per field. Numbers without a kind are int64 when the text is integral.
func Headers(attrs map[string]booking.MessageAttribute) (amqp.Table, error) {
	headers := make(amqp.Table, len(attrs))
	for name, attr := range attrs {
		if attr.DataType != booking.DataTypeNumber {
			headers[name] = attr.StringValue
			continue
		}
		v, err := numberHeader(attr)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: attribute %s is not a number: %q", name, attr.StringValue)
		}
		headers[name] = v
	}
	return headers, nil
}

func numberHeader(attr booking.MessageAttribute) (any, error) {
	switch attr.Kind {
	case booking.KindFloat:
		return strconv.ParseFloat(attr.StringValue, 64)
	case booking.KindInteger:
		return strconv.ParseInt(attr.StringValue, 10, 64)
	}
	if i, err := strconv.ParseInt(attr.StringValue, 10, 64); err == nil {
		return i, nil
	}
	return strconv.ParseFloat(attr.StringValue, 64)
}

// confirmation is the broker's answer for exactly one publish.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type publishFunc func(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error)

// PublishMessage publishes once and waits for that message's confirm within the publish timeout.
func (client *Client) PublishMessage(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error {
	client.mu.RLock()
	ch := client.pubChan
	conn := client.conn
	client.mu.RUnlock()

	// quick fail if no channel
	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	return publishConfirmed(ctx, client.publishTimeout, channelPublisher(ch), exchange, routingKey, msg)
}

// channelPublisher publishes on ch and hands back the deferred confirm bound to the delivery tag.
func channelPublisher(ch *amqp.Channel) publishFunc {
	return func(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error) {
		dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, false /* mandatory */, false /* immediate */, msg)
		if err != nil {
			return nil, err
		}
		if dc == nil {
			return nil, errors.New("channel is not in confirm mode")
		}
		return dc, nil
	}
}

// publishConfirmed bounds publish plus confirm by timeout. A confirm that arrives late
// resolves only its own publish, never a later one.
func publishConfirmed(ctx context.Context, timeout time.Duration, publish publishFunc, exchange, routingKey string, msg amqp.Publishing) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conf, err := publish(ctx, exchange, routingKey, msg)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish to %s: %w", exchange, err)
	}

	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("rabbitmq: waiting for confirm: %w", err)
	}
	if !ack {
		return errors.New("rabbitmq: publish not acknowledged")
	}
	return nil
}
