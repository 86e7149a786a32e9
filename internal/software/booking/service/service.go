package service

import (
	"unicorn-booking/internal/general/logger"
	"unicorn-booking/internal/ports"

	"github.com/google/uuid"
)

// bookingService is the request handler. It is built once per process and shared by all requests.
type bookingService struct {
	logger   *logger.Logger
	store    ports.BookingStore
	notifier ports.Notifier
	table    string
	topic    string
	newID    func() string
}

// Option customizes a bookingService.
type Option func(*bookingService)

// WithIDGenerator replaces the UUIDv4 generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *bookingService) { s.newID = gen }
}

// NewBookingService creates the booking handler bound to one table and one topic.
func NewBookingService(
	logger *logger.Logger,
	store ports.BookingStore,
	notifier ports.Notifier,
	table string,
	topic string,
	opts ...Option,
) ports.BookingService {
	s := &bookingService{
		logger:   logger,
		store:    store,
		notifier: notifier,
		table:    table,
		topic:    topic,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
