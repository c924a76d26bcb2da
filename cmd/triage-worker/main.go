package main

import (
	"context"
	"crypto/tls"
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
	"github.com/redis/go-redis/v9"

	"github.com/albertosilva007/triagem-platform/cmd/mainconfig"
	appconfig "github.com/albertosilva007/triagem-platform/internal/config"
	"github.com/albertosilva007/triagem-platform/internal/notify"
	"github.com/albertosilva007/triagem-platform/internal/records"
	"github.com/albertosilva007/triagem-platform/internal/responder"
	"github.com/albertosilva007/triagem-platform/internal/sessions"
	"github.com/albertosilva007/triagem-platform/internal/triage"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.TriageQueueURL == "" {
		logger.Error("TRIAGE_QUEUE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	sessionStore := sessions.NewStore(redisClient, cfg.SessionTTL, nil)

	var recordStore triage.RecordStore
	var jobUpdater triage.JobUpdater
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		recordStore = records.NewStore(pool, logger)
		jobUpdater = triage.NewPGJobStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set; triage records will not be persisted")
	}

	service := triage.NewService(
		sessionStore,
		recordStore,
		buildNotifier(cfg, awsCfg, logger),
		buildResponder(ctx, cfg, awsCfg, logger),
		triage.Policy{
			ScoreModerate:   cfg.ScoreModerate,
			ScoreIntense:    cfg.ScoreIntense,
			ScoreUrgent:     cfg.ScoreUrgent,
			ReasonsModerate: cfg.ReasonsModerate,
			ReasonsIntense:  cfg.ReasonsIntense,
			ReasonsUrgent:   cfg.ReasonsUrgent,
		},
		nil,
		logger,
	)

	queue := triage.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.TriageQueueURL)
	worker := triage.NewWorker(
		service,
		queue,
		jobUpdater,
		logger,
		triage.WithWorkerCount(cfg.WorkerCount),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	worker.Start(runCtx)
	logger.Info("triage worker started", "workers", cfg.WorkerCount)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down triage worker...")
	cancel()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("triage worker stopped")
	case <-doneCtx.Done():
		logger.Error("triage worker shutdown timed out", "error", doneCtx.Err())
	}
}

func buildNotifier(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) triage.Notifier {
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
		return nil
	}

	var recipients []string
	for _, p := range strings.Split(cfg.EmailRecipients, ",") {
		if p = strings.TrimSpace(p); p != "" {
			recipients = append(recipients, p)
		}
	}

	return notify.NewService(telegram, email, notify.Config{
		DoctorChatID:    cfg.TelegramDoctorChatID,
		AdminChatID:     cfg.TelegramAdminChatID,
		EmailRecipients: recipients,
	}, logger)
}

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
