package service

import (
	"context"
	"errors"
	"fmt"

	"unicorn-booking/internal/domain/booking"
)

// Handle runs validate, assign id, store, publish, respond. Store and publish are single
// sequential calls; a publish failure leaves the stored item in place.
func (service *bookingService) Handle(ctx context.Context, event booking.Event) (booking.Response, error) {
	service.logger.Debug(ctx, "event_received", "Booking event received", map[string]any{
		"body": event.Body,
	})

	req, err := booking.ParseRequest(event.Body)
	if err != nil {
		service.logger.Error(ctx, "request_malformed", "Failed to load booking request", err, nil)
		return booking.Response{}, err
	}
	service.logger.Debug(ctx, "request_loaded", "The request loaded", map[string]any{
		"request": req,
	})

	if err := booking.Validate(req); err != nil {
		var fe *booking.FieldError
		if !errors.As(err, &fe) {
			return booking.Response{}, err
		}
		service.logger.Info(ctx, "validation_failed", fe.Error(), map[string]any{
			"field":    fe.Field,
			"expected": fe.Expected.String(),
		})
		return booking.BadRequest(), nil
	}
	service.logger.Info(ctx, "request_valid", "Request is valid!", nil)

	id := service.newID()
	ctx = service.logger.WithBookingID(ctx, id)

	rec, err := booking.NewRecord(req, id)
	if err != nil {
		return booking.Response{}, fmt.Errorf("build booking record: %w", err)
	}

	// persist first; nothing is published unless the item is stored
	if err := service.store.PutItem(ctx, service.table, rec.Item()); err != nil {
		service.logger.Error(ctx, "booking_store_failed", "Failed to store booking", err, map[string]any{
			"table": service.table,
		})
		return booking.Response{}, fmt.Errorf("put booking item: %w", err)
	}
	service.logger.Info(ctx, "booking_stored", "Booking stored", map[string]any{
		"table": service.table,
	})

	msg, err := rec.Notification()
	if err != nil {
		return booking.Response{}, err
	}

	// no compensation: a stored booking stays stored if this fails
	if err := service.notifier.Publish(ctx, service.topic, msg); err != nil {
		service.logger.Error(ctx, "booking_publish_failed", "Failed to publish booking notification; booking remains stored", err, map[string]any{
			"topic": service.topic,
		})
		return booking.Response{}, fmt.Errorf("publish booking notification: %w", err)
	}
	service.logger.Info(ctx, "booking_published", "Booking notification published", map[string]any{
		"topic":    service.topic,
		"fare":     msg.Attributes[booking.FieldFare].StringValue,
		"distance": msg.Attributes[booking.FieldDistance].StringValue,
	})

	return booking.Created(id)
}
