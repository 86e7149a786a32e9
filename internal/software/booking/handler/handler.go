package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"unicorn-booking/internal/general/logger"
	"unicorn-booking/internal/ports"
)

// BookingHTTPHandler adapts HTTP requests to booking events and maps handler results back.
type BookingHTTPHandler struct {
	svc    ports.BookingService
	logger *logger.Logger
}

// NewBookingHTTPHandler wires an HTTP handler around the BookingService.
func NewBookingHTTPHandler(svc ports.BookingService, logger *logger.Logger) *BookingHTTPHandler {
	return &BookingHTTPHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts booking endpoints on the provided mux.
func (handler *BookingHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /bookings", handler.handleCreateBooking)
	mux.HandleFunc("GET /bookings/health", handler.handleHealth)
}

// ----- Handler: GET /bookings/health -----

func (handler *BookingHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	type resp struct {
		Status string `json:"status"`
	}
	handler.jsonResponse(r.Context(), w, http.StatusOK, resp{Status: "ok"})
}

// ----- general helpers -----

// jsonResponse encodes data and writes it with status.
func (handler *BookingHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	buf := []byte("{}")
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
		buf = b
	}

	handler.writeRaw(w, status, buf)
}

// writeRaw writes an already encoded JSON body.
func (handler *BookingHTTPHandler) writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// internalError is the invoking layer's answer to any unhandled handler failure.
func (handler *BookingHTTPHandler) internalError(ctx context.Context, w http.ResponseWriter, err error) {
	handler.logger.Error(ctx, "http_internal_error", "Booking handler failed", err, nil)

	type errBody struct {
		Message string `json:"message"`
	}
	handler.jsonResponse(ctx, w, http.StatusInternalServerError, errBody{Message: "Internal server error"})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *BookingHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
