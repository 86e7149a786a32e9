package ports

import (
	"context"

	"unicorn-booking/internal/domain/booking"
)

// BookingStore is the durable key-value store holding one item per booking.
type BookingStore interface {
	// PutItem writes item into table under item.Key(), replacing any previous item.
	PutItem(ctx context.Context, table string, item booking.Item) error
}
