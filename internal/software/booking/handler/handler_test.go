package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"unicorn-booking/internal/domain/booking"
	"unicorn-booking/internal/general/logger"
)

type fakeService struct {
	events []booking.Event
	resp   booking.Response
	err    error
}

func (f *fakeService) Handle(ctx context.Context, event booking.Event) (booking.Response, error) {
	f.events = append(f.events, event)
	if ctx.Err() != nil {
		return booking.Response{}, ctx.Err()
	}
	return f.resp, f.err
}

func newMux(svc *fakeService) *http.ServeMux {
	mux := http.NewServeMux()
	NewBookingHTTPHandler(svc, logger.NewWithWriter("booking-test", io.Discard)).RegisterRoutes(mux)
	return mux
}

func TestCreateBooking_PassesBodyAndWritesResponse(t *testing.T) {
	svc := &fakeService{resp: booking.Response{StatusCode: 201, Body: `{"id":"b-1"}`}}
	mux := newMux(svc)

	body := `{"from":"A","to":"B","customer":"c","duration":1,"distance":2,"fare":3.5}`
	r := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if w.Body.String() != `{"id":"b-1"}` {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected JSON content type, got %q", w.Header().Get("Content-Type"))
	}
	if len(svc.events) != 1 || svc.events[0].Body != body {
		t.Fatalf("expected body to be passed through, got %+v", svc.events)
	}
}

func TestCreateBooking_ValidationFailure(t *testing.T) {
	svc := &fakeService{resp: booking.BadRequest()}
	mux := newMux(svc)

	r := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest || w.Body.String() != "{}" {
		t.Fatalf("expected 400 {}, got %d %q", w.Code, w.Body.String())
	}
}

func TestCreateBooking_HandlerErrorIs500(t *testing.T) {
	svc := &fakeService{err: errors.New("publish timeout")}
	mux := newMux(svc)

	r := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"from":`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body: %v", err)
	}
	if body["message"] != "Internal server error" {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestCreateBooking_ClientCancelDoesNotAbortHandler(t *testing.T) {
	svc := &fakeService{resp: booking.Response{StatusCode: 201, Body: `{"id":"b-1"}`}}
	mux := newMux(svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`)).WithContext(ctx)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected handler to run to completion, got %d", w.Code)
	}
}

func TestCreateBooking_BodyTooLarge(t *testing.T) {
	svc := &fakeService{}
	mux := newMux(svc)

	r := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(make([]byte, maxBodyBytes+1)))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if len(svc.events) != 0 {
		t.Fatalf("expected handler not to be called")
	}
}

func TestHealth(t *testing.T) {
	mux := newMux(&fakeService{})

	r := httptest.NewRequest(http.MethodGet, "/bookings/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected health response %d %q", w.Code, w.Body.String())
	}
}

func TestCreateBooking_WrongMethod(t *testing.T) {
	mux := newMux(&fakeService{})

	r := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
