package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookdeskhq/bookdesk/libs/config"
	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/libs/httpx"
	otelx "github.com/bookdeskhq/bookdesk/libs/otel"
	"github.com/bookdeskhq/bookdesk/libs/runtime"
	"github.com/bookdeskhq/bookdesk/services/assistant-service/internal/ai"
	"github.com/bookdeskhq/bookdesk/services/assistant-service/internal/handlers"
	"github.com/bookdeskhq/bookdesk/services/assistant-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "assistant-service")
	port, err := config.Port("PORT", "8081")
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
	pool, err := db.Open(ctx, dbURL, db.Options{})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	modelBaseURL, err := config.RequiredString("MODEL_API_BASE_URL")
	if err != nil {
		panic(err)
	}
	modelClient := ai.NewClient(ai.Config{
		BaseURL:        modelBaseURL,
		APIKey:         config.String("MODEL_API_KEY", ""),
		Model:          config.String("MODEL_NAME", "gpt-4o-mini"),
		MaxAttempts:    config.Int("MODEL_MAX_ATTEMPTS", 3),
		Backoff:        config.DurationSeconds("MODEL_RETRY_BACKOFF_SECONDS", 2*time.Second),
		AttemptTimeout: config.DurationSeconds("MODEL_ATTEMPT_TIMEOUT_SECONDS", 15*time.Second),
	})

	chatRepo := storage.NewChatRepository(pool)
	chatHandler := handlers.NewChatHandler(chatRepo, modelClient, logger, config.String("SYSTEM_PROMPT", ""))

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)
	mux.HandleFunc("/api/v1/chat", chatHandler.Chat)

	limiter := httpx.NewRateLimiter(config.Int("RATE_LIMIT_PER_MINUTE", 60), time.Minute)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		limiter.Middleware(),
		httpx.WithBodyLimit(int64(config.Int("MAX_BODY_BYTES", 64<<10))),
		httpx.WithTimeout(config.DurationSeconds("REQUEST_TIMEOUT_SECONDS", 60*time.Second)),
	)
	handler = otelhttp.NewHandler(handler, "assistant")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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
