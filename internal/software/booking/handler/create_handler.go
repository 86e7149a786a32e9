package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"unicorn-booking/internal/domain/booking"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// ----- Handler: POST /bookings -----

func (handler *BookingHTTPHandler) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	// the booking runs to completion once started; collaborator timeouts bound it
	ctx := handler.withReqID(context.WithoutCancel(r.Context()), r)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.logger.Error(ctx, "request_too_large", "Request body too large", err, nil)
			handler.jsonResponse(ctx, w, http.StatusRequestEntityTooLarge, nil)
			return
		}
		handler.internalError(ctx, w, err)
		return
	}

	resp, err := handler.svc.Handle(ctx, booking.Event{Body: string(body)})
	if err != nil {
		handler.internalError(ctx, w, err)
		return
	}

	handler.writeRaw(w, resp.StatusCode, []byte(resp.Body))
}
