package bookingservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"unicorn-booking/internal/general/config"
	"unicorn-booking/internal/general/kafka"
	"unicorn-booking/internal/general/logger"
	"unicorn-booking/internal/general/postgres"
	"unicorn-booking/internal/general/rabbitmq"
	"unicorn-booking/internal/general/redisstore"
	"unicorn-booking/internal/ports"
	"unicorn-booking/internal/software/booking/handler"
	"unicorn-booking/internal/software/booking/service"

	"golang.org/x/time/rate"
)

// Options are the command-line knobs of the booking service.
type Options struct {
	ConfigPath    string
	MaxConcurrent int
}

// Run wires the booking service and blocks until ctx is cancelled.
// Configuration and collaborator clients are set up once here and shared by every request.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		// the service name is unknown until config is loaded
		logger.New("unicorn-management-service").Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	logger := logger.New(cfg.Service.Name)
	logger.SetLevel(cfg.Service.LogLevel)
	ctx = logger.WithRequestID(ctx, "startup-001")

	logger.Info(ctx, "config_loaded", "Configuration loaded successfully", map[string]any{
		"table":           cfg.Booking.TableName,
		"topic":           cfg.Booking.TopicARN,
		"store_backend":   cfg.Store.Backend,
		"notify_backend":  cfg.Notifier.Backend,
		"connect_timeout": cfg.Client.ConnectTimeout.String(),
		"read_timeout":    cfg.Client.ReadTimeout.String(),
		"max_attempts":    cfg.Client.MaxAttempts,
	})

	store, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "store_init_failed", "Failed to initialize booking store", err, map[string]any{"backend": cfg.Store.Backend})
		return err
	}
	defer closeStore()

	notifier, closeNotifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "notifier_init_failed", "Failed to initialize booking notifier", err, map[string]any{"backend": cfg.Notifier.Backend})
		return err
	}
	defer closeNotifier()

	svc := service.NewBookingService(logger, store, notifier, cfg.Booking.TableName, cfg.Booking.TopicARN)

	mux := http.NewServeMux()
	handler.NewBookingHTTPHandler(svc, logger).RegisterRoutes(mux)

	// rate limiter first so rejected requests never hold a concurrency slot
	h := withConcurrencyLimit(opts.MaxConcurrent, mux)
	h = withRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst, h)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Service.Port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("Booking Service started on port %d", cfg.Service.Port),
		map[string]any{"port": cfg.Service.Port, "max_concurrent": opts.MaxConcurrent, "rate_limit_rps": cfg.RateLimit.RPS},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, "shutdown_started", "Starting graceful shutdown", nil)
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": cfg.Service.Port})
		}
		return err
	}
}

// newStore builds the configured key-value store backend.
func newStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) (ports.BookingStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		rdb, err := redisstore.NewClient(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewBookingStore(rdb), func() { _ = rdb.Close() }, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewBookingStore(pool, cfg.Client.ReadTimeout)
		if err := store.EnsureTable(ctx, cfg.Booking.TableName); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// newNotifier builds the configured notification backend.
func newNotifier(ctx context.Context, cfg *config.Config, logger *logger.Logger) (ports.Notifier, func(), error) {
	switch cfg.Notifier.Backend {
	case config.NotifierKafka:
		n := kafka.NewNotifier(cfg)
		return n, func() {
			if err := n.Close(); err != nil {
				logger.Error(ctx, "kafka_close_failed", "Failed to close Kafka writer", err, nil)
			}
		}, nil

	case config.NotifierRabbitMQ:
		client, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return rabbitmq.NewNotifier(client), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown notifier backend %q", cfg.Notifier.Backend)
	}
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// It controls how many HTTP requests can be in-progress at the same time.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}: // acquire
			defer func() { <-sem }() // release
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}

// withRateLimit rejects requests with 429 once the token bucket is empty. rps <= 0 disables it.
func withRateLimit(rps float64, burst int, next http.Handler) http.Handler {
	if rps <= 0 {
		return next
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
