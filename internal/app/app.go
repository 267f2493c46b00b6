package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/andreyxaxa/Image-Tagger/config"
	kafkactrl "github.com/andreyxaxa/Image-Tagger/internal/controller/kafka"
	"github.com/andreyxaxa/Image-Tagger/internal/controller/restapi"
	infrakafka "github.com/andreyxaxa/Image-Tagger/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Image-Tagger/internal/usecase/image"
	"github.com/andreyxaxa/Image-Tagger/pkg/httpserver"
	"github.com/andreyxaxa/Image-Tagger/pkg/kafka/consumer"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
)

// Run starts the HTTP API and, when brokers are configured, the bucket notification consumer.
func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository
	d, err := newDeps(ctx, cfg)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newDeps: %w", err))
	}
	defer d.Close()

	// Use-Case
	imageUseCase := image.New(d.imageRepo, d.metadataRepo, cfg.S3.PresignExpiry, l)

	// Kafka as Controller
	var kafkaController *kafkactrl.KafkaController
	if cfg.KafkaEnabled() {
		kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
		}

		kafkaController = kafkactrl.New(
			newLabeler(cfg, d, l),
			infrakafka.NewEventConsumer(kafkaConsumer),
			l,
			cfg.KafkaController.CommitTimeout,
			cfg.KafkaController.ProcessTimeout,
			cfg.KafkaController.RetryBackoff,
			runtime.NumCPU(),
		)
	}

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, imageUseCase, l)

	// Start Components
	if kafkaController != nil {
		err = kafkaController.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
		}
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	if kafkaController != nil {
		kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
		defer kcShutdownCancel()
		err = kafkaController.Shutdown(kcShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
		}
	}
}
