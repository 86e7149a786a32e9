package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"unicorn-booking/internal/domain/booking"
	"unicorn-booking/internal/general/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestHeaders_TypesNumbers(t *testing.T) {
	headers, err := Headers(map[string]booking.MessageAttribute{
		"fare":     {DataType: booking.DataTypeNumber, StringValue: "12.5", Kind: booking.KindFloat},
		"distance": {DataType: booking.DataTypeNumber, StringValue: "5", Kind: booking.KindInteger},
		"note":     {DataType: "String", StringValue: "x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, ok := headers["fare"].(float64); !ok || v != 12.5 {
		t.Fatalf("expected fare float64 12.5, got %#v", headers["fare"])
	}
	if v, ok := headers["distance"].(int64); !ok || v != 5 {
		t.Fatalf("expected distance int64 5, got %#v", headers["distance"])
	}
	if headers["note"] != "x" {
		t.Fatalf("expected string header, got %#v", headers["note"])
	}
	if err := headers.Validate(); err != nil {
		t.Fatalf("expected valid AMQP table: %v", err)
	}
}

func TestHeaders_WholeFareStaysFloat(t *testing.T) {
	headers, err := Headers(map[string]booking.MessageAttribute{
		"fare": {DataType: booking.DataTypeNumber, StringValue: "12", Kind: booking.KindFloat},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := headers["fare"].(float64); !ok || v != 12 {
		t.Fatalf("expected fare float64 12, got %#v", headers["fare"])
	}
}

func TestHeaders_RecordNotificationTypes(t *testing.T) {
	req, err := booking.ParseRequest(`{"from":"A","to":"B","customer":"c","duration":10,"distance":5,"fare":12.0}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec, err := booking.NewRecord(req, "b-1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	n, err := rec.Notification()
	if err != nil {
		t.Fatalf("notification: %v", err)
	}

	headers, err := Headers(n.Attributes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := headers["fare"].(float64); !ok {
		t.Fatalf("expected float64 fare header, got %#v", headers["fare"])
	}
	if _, ok := headers["distance"].(int64); !ok {
		t.Fatalf("expected int64 distance header, got %#v", headers["distance"])
	}
}

func TestHeaders_RejectsNonNumeric(t *testing.T) {
	_, err := Headers(map[string]booking.MessageAttribute{
		"fare": {DataType: booking.DataTypeNumber, StringValue: "cheap"},
	})
	if err == nil {
		t.Fatalf("expected error for non-numeric Number attribute")
	}
}

func TestAMQPURL_EscapesCredentials(t *testing.T) {
	cfg := &config.Config{}
	cfg.RabbitMQ.User = "svc"
	cfg.RabbitMQ.Password = "p@ss/word"
	cfg.RabbitMQ.Host = "mq"
	cfg.RabbitMQ.Port = 5672

	if got := amqpURL(cfg); got != "amqp://svc:p%40ss%2Fword@mq:5672/" {
		t.Fatalf("unexpected url %q", got)
	}
}

type fakeConfirm struct {
	done chan struct{}
	ack  bool
}

func newFakeConfirm() *fakeConfirm {
	return &fakeConfirm{done: make(chan struct{})}
}

func (c *fakeConfirm) resolve(ack bool) {
	c.ack = ack
	close(c.done)
}

func (c *fakeConfirm) WaitContext(ctx context.Context) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.done:
		return c.ack, nil
	}
}

// fakeBroker hands out one confirmation per publish, in delivery-tag order.
type fakeBroker struct {
	confirms []*fakeConfirm
	sent     []amqp.Publishing
	err      error
}

func (b *fakeBroker) publish(_ context.Context, _, _ string, msg amqp.Publishing) (confirmation, error) {
	if b.err != nil {
		return nil, b.err
	}
	c := b.confirms[len(b.sent)]
	b.sent = append(b.sent, msg)
	return c, nil
}

func TestPublishConfirmed_Ack(t *testing.T) {
	c := newFakeConfirm()
	c.resolve(true)
	broker := &fakeBroker{confirms: []*fakeConfirm{c}}

	if err := publishConfirmed(context.Background(), time.Second, broker.publish, "bookings", "", amqp.Publishing{MessageId: "b-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(broker.sent) != 1 || broker.sent[0].MessageId != "b-1" {
		t.Fatalf("expected one publish of b-1, got %+v", broker.sent)
	}
}

func TestPublishConfirmed_Nack(t *testing.T) {
	c := newFakeConfirm()
	c.resolve(false)
	broker := &fakeBroker{confirms: []*fakeConfirm{c}}

	if err := publishConfirmed(context.Background(), time.Second, broker.publish, "bookings", "", amqp.Publishing{}); err == nil {
		t.Fatalf("expected nack to be reported")
	}
}

func TestPublishConfirmed_PublishError(t *testing.T) {
	boom := errors.New("channel closed")
	broker := &fakeBroker{err: boom}

	err := publishConfirmed(context.Background(), time.Second, broker.publish, "bookings", "", amqp.Publishing{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestPublishConfirmed_TimeoutStaysWithinBudget(t *testing.T) {
	broker := &fakeBroker{confirms: []*fakeConfirm{newFakeConfirm()}}

	start := time.Now()
	err := publishConfirmed(context.Background(), 50*time.Millisecond, broker.publish, "bookings", "", amqp.Publishing{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected to give up at the publish timeout, took %s", elapsed)
	}
}

func TestPublishConfirmed_LateConfirmIsNotCreditedToNextPublish(t *testing.T) {
	first, second := newFakeConfirm(), newFakeConfirm()
	broker := &fakeBroker{confirms: []*fakeConfirm{first, second}}

	err := publishConfirmed(context.Background(), 20*time.Millisecond, broker.publish, "bookings", "", amqp.Publishing{MessageId: "a"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected first publish to time out, got %v", err)
	}

	// the first ack arrives after its publish gave up; the broker rejects the second message
	first.resolve(true)
	second.resolve(false)

	if err := publishConfirmed(context.Background(), time.Second, broker.publish, "bookings", "", amqp.Publishing{MessageId: "b"}); err == nil {
		t.Fatalf("expected the second publish to report its own nack")
	}
}
