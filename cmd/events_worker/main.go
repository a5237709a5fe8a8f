package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/users-service/config"
	"github.com/oksasatya/users-service/internal/infrastructure/search"
	"github.com/oksasatya/users-service/internal/infrastructure/storage"
	"github.com/oksasatya/users-service/internal/worker"
	"github.com/oksasatya/users-service/pkg/helpers"
	"github.com/oksasatya/users-service/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-events-worker", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQUserEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := &worker.UserEventsConsumer{Logger: logger}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		indexer := search.NewUserIndexer(es, cfg.ESUsersIndex)
		if err := indexer.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("could not ensure users index; indexing will retry per event")
		}
		consumer.Indexer = indexer
		logger.WithField("index", cfg.ESUsersIndex).Info("search indexing enabled")
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("gcs: %v", err)
		}
		defer func() { _ = gcs.Close() }()
		consumer.Archiver = storage.NewEventArchive(gcs, cfg.GCSBucket)
		logger.WithField("bucket", cfg.GCSBucket).Info("event archive enabled")
	}

	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			log.Fatal("MAIL_SEND_ENABLED=true but Mailgun not configured")
		}
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
		consumer.Mailer = mailer.NewWelcomer(mg, cfg.AppName, cfg.CompanyName, cfg.SupportURL)
		logger.Info("welcome email enabled")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := helpers.DeclareQueue(conn, cfg.RabbitMQUserEventsQueue)
	if err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch across workers
	if err := ch.Qos(cfg.WorkerPrefetch, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQUserEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	done := make(chan struct{})
	go func() {
		consumer.Consume(ctx, msgs)
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQUserEventsQueue).Info("events worker listening")
	<-ctx.Done()
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("consumer did not stop in time")
	}
}
