package ports

import (
	"context"

	"unicorn-booking/internal/domain/booking"
)

// Notifier publishes booking notifications to a topic for downstream subscribers.
type Notifier interface {
	Publish(ctx context.Context, topic string, n booking.Notification) error
}

// BookingService exposes the boundary for the booking request handler.
type BookingService interface {
	// Handle validates, stores and announces one booking.
	// Only validation failures become a response; every other failure is returned.
	Handle(ctx context.Context, event booking.Event) (booking.Response, error)
}
