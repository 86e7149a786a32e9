package kafka

import (
	"context"
	"errors"
	"testing"

	"unicorn-booking/internal/domain/booking"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error { return nil }

func testNotification() booking.Notification {
	return booking.Notification{
		BookingID: "b-1",
		Body:      []byte(`{"id":"b-1"}`),
		Attributes: map[string]booking.MessageAttribute{
			"fare":     {DataType: booking.DataTypeNumber, StringValue: "12.5"},
			"distance": {DataType: booking.DataTypeNumber, StringValue: "5"},
		},
	}
}

func TestNotifier_Publish(t *testing.T) {
	w := &fakeWriter{}
	n := &Notifier{writer: w}

	if err := n.Publish(context.Background(), "unicorn-bookings", testNotification()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(w.msgs))
	}

	msg := w.msgs[0]
	if msg.Topic != "unicorn-bookings" || string(msg.Key) != "b-1" || string(msg.Value) != `{"id":"b-1"}` {
		t.Fatalf("unexpected message %+v", msg)
	}

	want := []kafka.Header{
		{Key: "content-type", Value: []byte("application/json")},
		{Key: "distance", Value: []byte("5")},
		{Key: "fare", Value: []byte("12.5")},
	}
	if len(msg.Headers) != len(want) {
		t.Fatalf("expected %d headers, got %d", len(want), len(msg.Headers))
	}
	for i, h := range want {
		if msg.Headers[i].Key != h.Key || string(msg.Headers[i].Value) != string(h.Value) {
			t.Errorf("header %d: got %s=%s, want %s=%s", i, msg.Headers[i].Key, msg.Headers[i].Value, h.Key, h.Value)
		}
	}
}

func TestNotifier_PublishPropagatesError(t *testing.T) {
	boom := errors.New("leader not available")
	n := &Notifier{writer: &fakeWriter{err: boom}}

	if err := n.Publish(context.Background(), "t", testNotification()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
