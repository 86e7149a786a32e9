package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"unicorn-booking/internal/domain/booking"

	"github.com/redis/go-redis/v9"
)

type hashSetter interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// BookingStore keeps each booking in a hash at "<table>:<id>", one field per attribute.
// Field values are the tagged attribute JSON, e.g. {"N":"12.5"}.
type BookingStore struct {
	rdb hashSetter
}

// NewBookingStore constructs a BookingStore on top of a redis client.
func NewBookingStore(rdb hashSetter) *BookingStore {
	return &BookingStore{rdb: rdb}
}

// PutItem writes every attribute of item into the booking hash.
func (store *BookingStore) PutItem(ctx context.Context, table string, item booking.Item) error {
	id := item.Key()
	if id == "" {
		return errors.New("redis: item has no id attribute")
	}

	fields, err := encodeFields(item)
	if err != nil {
		return err
	}

	if err := store.rdb.HSet(ctx, Key(table, id), fields).Err(); err != nil {
		return fmt.Errorf("redis: put item %s: %w", id, err)
	}
	return nil
}

// Key is the hash key of a booking.
func Key(table, id string) string {
	return table + ":" + id
}

func encodeFields(item booking.Item) (map[string]any, error) {
	fields := make(map[string]any, len(item))
	for name, attr := range item {
		b, err := json.Marshal(attr)
		if err != nil {
			return nil, fmt.Errorf("redis: encode %s: %w", name, err)
		}
		fields[name] = string(b)
	}
	return fields, nil
}
