package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookdeskhq/bookdesk/libs/config"
	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/libs/httpx"
	"github.com/bookdeskhq/bookdesk/libs/kafkax"
	otelx "github.com/bookdeskhq/bookdesk/libs/otel"
	"github.com/bookdeskhq/bookdesk/libs/runtime"
	"github.com/bookdeskhq/bookdesk/services/notification-service/internal/consumer"
	"github.com/bookdeskhq/bookdesk/services/notification-service/internal/email"
	"github.com/bookdeskhq/bookdesk/services/notification-service/internal/inbox"
	"github.com/bookdeskhq/bookdesk/services/notification-service/internal/notify"
	"github.com/bookdeskhq/bookdesk/services/notification-service/internal/outbox"
	"github.com/bookdeskhq/bookdesk/services/notification-service/internal/sms"
	"github.com/bookdeskhq/bookdesk/services/notification-service/internal/storage"
)

const (
	topicBooked    = "scheduling.appointment.booked.v1"
	topicCancelled = "scheduling.appointment.cancelled.v1"
)

type processor struct {
	pool       *db.Pool
	records    *storage.Repository
	outboxRepo *outbox.Repository
	email      email.Sender
	sms        sms.Sender
	logger     *slog.Logger
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8082")
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

	inboxRepo := inbox.NewRepository(pool)
	recordsRepo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	emailSender := email.NewSMTPSender(email.Config{
		Host:     config.String("SMTP_HOST", "mailpit"),
		Port:     config.String("SMTP_PORT", "1025"),
		From:     config.String("SMTP_FROM", "no-reply@bookdesk.local"),
		Username: config.String("SMTP_USERNAME", ""),
		Password: config.String("SMTP_PASSWORD", ""),
	})

	var smsSender sms.Sender
	switch strings.ToLower(config.String("SMS_PROVIDER", "noop")) {
	case "webhook":
		smsSender = sms.NewWebhookSender(config.String("SMS_WEBHOOK_URL", ""), config.String("SMS_WEBHOOK_TOKEN", ""))
	default:
		smsSender = sms.NewNoopSender()
	}

	p := &processor{
		pool:       pool,
		records:    recordsRepo,
		outboxRepo: outboxRepo,
		email:      emailSender,
		sms:        smsSender,
		logger:     logger,
	}

	groupID := config.String("KAFKA_GROUP_ID", "notification-service")
	for _, topic := range []string{topicBooked, topicCancelled} {
		topic := topic
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: kafkaBrokers,
			GroupID: groupID,
			Topic:   topic,
		}, func(ctx context.Context, msg kafka.Message) error {
			return p.handle(ctx, topic, msg)
		})
		go eventConsumer.Run(ctx)
	}

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
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

func (p *processor) handle(ctx context.Context, topic string, msg kafka.Message) error {
	var booking notify.Booking
	if err := json.Unmarshal(msg.Value, &booking); err != nil {
		p.logger.Error("invalid booking payload", "err", err, "topic", topic)
		return nil
	}
	if booking.AppointmentID == "" || booking.Client == "" || booking.Email == "" {
		p.logger.Error("missing booking fields", "topic", topic)
		return nil
	}

	var subject, body, smsBody string
	if topic == topicCancelled {
		subject = notify.CancellationSubject(booking)
		body = notify.CancellationBody(booking)
		smsBody = notify.CancellationSMS(booking)
	} else {
		subject = notify.ConfirmationSubject(booking)
		body = notify.ConfirmationBody(booking)
		smsBody = notify.ConfirmationSMS(booking)
	}

	if err := p.deliver(ctx, booking, "email", booking.Email, func() error {
		return p.email.Send(booking.Email, subject, body)
	}); err != nil {
		return err
	}

	if booking.Phone != "" {
		if err := p.deliver(ctx, booking, "sms", booking.Phone, func() error {
			return p.sms.Send(ctx, sms.Message{
				To:            booking.Phone,
				Body:          smsBody,
				Client:        booking.Client,
				AppointmentID: booking.AppointmentID,
			})
		}); err != nil {
			return err
		}
	}
	return nil
}

// deliver sends over one channel, records the outcome, and queues the
// matching notification.sent/failed event.
func (p *processor) deliver(ctx context.Context, booking notify.Booking, channel, recipient string, send func() error) error {
	status := "sent"
	failureReason := ""
	if err := send(); err != nil {
		status = "failed"
		failureReason = err.Error()
		p.logger.Error(channel+" send failed", "err", err, "recipient", recipient)
	}

	if err := p.records.Insert(ctx, storage.Notification{
		AppointmentID: booking.AppointmentID,
		ClientID:      booking.Client,
		Channel:       channel,
		Recipient:     recipient,
		Payload: map[string]any{
			"date":   booking.Date,
			"time":   booking.Time,
			"status": booking.Status,
		},
		Status: status,
	}); err != nil {
		p.logger.Error("failed to persist notification", "err", err)
		return err
	}

	return p.emitOutcome(ctx, booking, channel, status, failureReason)
}

func (p *processor) emitOutcome(ctx context.Context, booking notify.Booking, channel, status, reason string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	fields := map[string]any{
		"appointment_id": booking.AppointmentID,
		"client":         booking.Client,
		"channel":        channel,
	}
	eventType := outbox.EventNotificationSent
	if status == "failed" {
		eventType = outbox.EventNotificationFailed
		fields["error_reason"] = reason
		fields["failed_at"] = time.Now().UTC().Format(time.RFC3339)
	} else {
		fields["sent_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	if err := p.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "notification",
		AggregateID:   booking.AppointmentID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
