package main

import (
	"context"
	"crypto/tls"
	_ "embed"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/albertosilva007/triagem-platform/cmd/mainconfig"
	"github.com/albertosilva007/triagem-platform/internal/api/router"
	appconfig "github.com/albertosilva007/triagem-platform/internal/config"
	"github.com/albertosilva007/triagem-platform/internal/http/handlers"
	"github.com/albertosilva007/triagem-platform/internal/notify"
	"github.com/albertosilva007/triagem-platform/internal/observability/metrics"
	"github.com/albertosilva007/triagem-platform/internal/records"
	"github.com/albertosilva007/triagem-platform/internal/responder"
	"github.com/albertosilva007/triagem-platform/internal/sessions"
	"github.com/albertosilva007/triagem-platform/internal/triage"
	"github.com/albertosilva007/triagem-platform/internal/webchat"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

//go:embed widget.js
var widgetJS []byte

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting triagem-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}

	redisClient := connectRedis(cfg)
	defer redisClient.Close()

	sessionStore := sessions.NewStore(redisClient, cfg.SessionTTL, nil)
	transcriptStore := sessions.NewTranscriptStore(redisClient, cfg.SessionTTL, nil)

	var recordStore triage.RecordStore
	var recordsHandler *handlers.AdminRecordsHandler
	if pool != nil {
		store := records.NewStore(pool, logger)
		recordStore = store
		recordsHandler = handlers.NewAdminRecordsHandler(store, logger)
	} else {
		logger.Warn("DATABASE_URL not set; triage records will not be persisted")
	}

	notifier, notifyService := buildNotifier(cfg, awsCfg, logger)

	triageMetrics, metricsHandler := setupTriageMetrics()

	service := triage.NewService(
		sessionStore,
		recordStore,
		notifier,
		buildResponder(ctx, cfg, awsCfg, logger),
		policyFromConfig(cfg),
		triageMetrics,
		logger,
	)

	var jobRecorder triage.JobRecorder
	var jobUpdater triage.JobUpdater
	var jobReader triage.JobReader
	if pool != nil {
		jobStore := triage.NewPGJobStore(pool)
		jobRecorder = jobStore
		jobUpdater = jobStore
		jobReader = jobStore
	}

	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()

	var publisher *triage.Publisher
	var inProcessWorker *triage.Worker
	switch {
	case cfg.UseMemoryQueue:
		queue := triage.NewMemoryQueue(64)
		publisher = triage.NewPublisher(queue, logger)
		inProcessWorker = triage.NewWorker(service, queue, jobUpdater, logger,
			triage.WithWorkerCount(cfg.WorkerCount),
			triage.WithReceiveWaitSeconds(1),
		)
		inProcessWorker.Start(workerCtx)
		logger.Info("async triage jobs served by in-process memory queue")
	case cfg.TriageQueueURL != "":
		queue := triage.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.TriageQueueURL)
		publisher = triage.NewPublisher(queue, logger)
	}

	conversationHandler := triage.NewHandler(service, publisher, jobRecorder, jobReader, logger)
	webchatHandler := webchat.NewHandler(service, transcriptStore, widgetJS, logger)

	var notificationsHandler *handlers.AdminNotificationsHandler
	if notifyService != nil {
		notificationsHandler = handlers.NewAdminNotificationsHandler(notifyService, logger)
	}

	r := router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: conversationHandler,
		WebchatHandler:      webchatHandler,
		AdminRecords:        recordsHandler,
		AdminNotifications:  notificationsHandler,
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  splitAndTrim(cfg.CORSAllowedOrigins),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if inProcessWorker != nil {
		workerCancel()
		inProcessWorker.Wait()
	}

	logger.Info("server stopped")
}

// connectPostgresPool returns nil when no database is configured so the
// server can still run conversations without persistence.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	return pool
}

func connectRedis(cfg *appconfig.Config) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

// buildNotifier returns the Notifier handed to the triage service and the
// concrete notify service for the admin test endpoint. Both are nil when
// no alert channel is configured, which keeps the degraded-mode wording
// in patient replies accurate.
func buildNotifier(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (triage.Notifier, *notify.Service) {
	var telegram notify.MessageSender
	if cfg.NotificationsEnabled {
		if client := notify.NewTelegramClient(cfg.TelegramBotToken, logger); client != nil {
			telegram = client
		}
	}

	var email notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			email = sender
		}
	case "ses":
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			email = sender
		}
	}

	if telegram == nil && email == nil {
		logger.Warn("no notification channel configured; urgent cases will only be logged")
		return nil, nil
	}

	service := notify.NewService(telegram, email, notify.Config{
		DoctorChatID:    cfg.TelegramDoctorChatID,
		AdminChatID:     cfg.TelegramAdminChatID,
		EmailRecipients: splitAndTrim(cfg.EmailRecipients),
	}, logger)
	return service, service
}

// buildResponder assembles the free-text fallback chain. With no provider
// configured the chain still serves canned replies.
func buildResponder(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) *responder.Chain {
	var clients []responder.Client
	switch cfg.ResponderProvider {
	case "bedrock":
		if cfg.BedrockModelID != "" {
			clients = append(clients, responder.NewBedrock(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID))
		}
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			gemini, err := responder.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				logger.Error("failed to create gemini client", "error", err)
			} else {
				clients = append(clients, gemini)
			}
		}
	}
	return responder.NewChain(cfg.ResponderTimeout, logger, clients...)
}

func policyFromConfig(cfg *appconfig.Config) triage.Policy {
	return triage.Policy{
		ScoreModerate:   cfg.ScoreModerate,
		ScoreIntense:    cfg.ScoreIntense,
		ScoreUrgent:     cfg.ScoreUrgent,
		ReasonsModerate: cfg.ReasonsModerate,
		ReasonsIntense:  cfg.ReasonsIntense,
		ReasonsUrgent:   cfg.ReasonsUrgent,
	}
}

func setupTriageMetrics() (*metrics.TriageMetrics, http.Handler) {
	return metrics.NewTriageMetrics(nil), promhttp.Handler()
}

func splitAndTrim(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
