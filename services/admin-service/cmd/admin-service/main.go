package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookdeskhq/bookdesk/libs/config"
	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/libs/httpx"
	"github.com/bookdeskhq/bookdesk/libs/kafkax"
	otelx "github.com/bookdeskhq/bookdesk/libs/otel"
	"github.com/bookdeskhq/bookdesk/libs/runtime"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/handlers"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/outbox"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "admin-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	availabilityRepo := storage.NewAvailabilityRepository(pool)
	blackoutRepo := storage.NewBlackoutRepository(pool)
	appointmentRepo := storage.NewAppointmentRepository(pool)
	settingsRepo := storage.NewSettingsRepository(pool)
	chatLogRepo := storage.NewChatLogRepository(pool)
	operatorRepo := storage.NewOperatorRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityRepo, blackoutRepo, appointmentRepo, settingsRepo, logger)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentRepo, outboxRepo, logger)
	blackoutHandler := handlers.NewBlackoutHandler(blackoutRepo, logger)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, logger)
	chatLogHandler := handlers.NewChatLogHandler(chatLogRepo, logger)
	authHandler := handlers.NewAuthHandler(operatorRepo, logger, jwtSecret)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMux(readyChecks...)

	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)

	// The dashboard surface sits behind operator auth; the availability check
	// stays open so the public booking widget and the assistant can read it.
	mux.HandleFunc("/api/v1/availability/check", availabilityHandler.Check)
	protected := http.NewServeMux()
	protected.HandleFunc("/api/v1/availability", availabilityHandler.Template)
	protected.HandleFunc("/api/v1/appointments", appointmentHandler.Appointments)
	protected.HandleFunc("/api/v1/blackouts", blackoutHandler.Blackouts)
	protected.HandleFunc("/api/v1/settings", settingsHandler.Settings)
	protected.HandleFunc("/api/v1/chat-logs", chatLogHandler.ChatLogs)
	mux.Handle("/api/v1/", authHandler.RequireAuth(protected))

	rateLimit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var limiter httpx.Middleware
	if redisAddr := strings.TrimSpace(config.String("REDIS_ADDR", "")); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()
		limiter = httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, service).
			Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
	} else {
		limiter = httpx.NewRateLimiter(rateLimit, time.Minute).Middleware()
	}

	corsOrigins := strings.Split(config.String("CORS_ALLOWED_ORIGINS", ""), ",")
	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", httpx.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		limiter,
		httpx.WithBodyLimit(int64(config.Int("MAX_BODY_BYTES", 1<<20))),
		httpx.WithTimeout(config.DurationSeconds("REQUEST_TIMEOUT_SECONDS", 30*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "admin")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
