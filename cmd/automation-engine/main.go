package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/lumahq/automation/pkg/cmd"
	"github.com/lumahq/automation/pkg/config"
	"github.com/lumahq/automation/pkg/events"
	"github.com/lumahq/automation/pkg/log"
	"github.com/lumahq/automation/pkg/notifications"
	"github.com/lumahq/automation/pkg/otelhelper"
	"github.com/lumahq/automation/pkg/protocol"
	"github.com/lumahq/automation/pkg/workflow"
)

const serviceName = "automation-engine"

func main() {
	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Run the rule automation engine",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the engine YAML config",
				Value:   "./engine.yaml",
				Sources: cli.EnvVars("ENGINE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	workerID := command.String("worker-id")
	if workerID == "" {
		workerID = fmt.Sprintf("engine-%s", uuid.New().String()[:8])
	}

	logger := log.WithModule(serviceName).With("worker_id", workerID)
	logger.Info("Initializing engine worker")

	tracerProvider, err := otelhelper.InitTracer(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	defer func() {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error("Failed to shutdown tracer provider", "error", err)
		}
	}()

	cfg := config.LoadEngineConfigOrDefault(command.String("config"))

	persist := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	defer func() {
		if err := persist.Close(ctx); err != nil {
			logger.Error("Failed to close persistence", "error", err)
		}
	}()

	provider := command.String("event-bus")

	entityBus := cmd.NewEventBus(provider, logger, serviceName, cfg.EntityTopic)
	defer func() {
		if err := entityBus.Close(); err != nil {
			logger.Error("Failed to close entity event bus", "error", err)
		}
	}()

	executionBus := cmd.NewEventBus(provider, logger, serviceName+"-executions", cfg.ExecutionTopic)
	defer func() {
		if err := executionBus.Close(); err != nil {
			logger.Error("Failed to close execution event bus", "error", err)
		}
	}()

	outboundBus := cmd.NewEventBus(provider, logger, serviceName+"-outbox", events.OutboundTopic)
	defer func() {
		if err := outboundBus.Close(); err != nil {
			logger.Error("Failed to close outbox event bus", "error", err)
		}
	}()

	outbox := notifications.NewOutbox(outboundBus, logger)

	var pendingStore protocol.PendingNotificationStore

	if cfg.NotificationsURL != "" {
		redisStore, err := notifications.NewRedisStoreFromURL(ctx, logger, cfg.NotificationsURL)
		if err != nil {
			return fmt.Errorf("failed to connect notification store: %w", err)
		}

		defer func() {
			if err := redisStore.Close(); err != nil {
				logger.Error("Failed to close notification store", "error", err)
			}
		}()

		pendingStore = redisStore
	}

	registry := cmd.NewRegistry(logger, persist, cmd.Collaborators{
		Notifications: pendingStore,
		Mailer:        outbox,
		Notifier:      outbox,
	})

	manager := workflow.NewManager(persist, registry, logger)

	worker := NewWorker(
		workerID,
		cfg,
		persist,
		manager,
		entityBus,
		executionBus,
		tracerProvider.Tracer(serviceName),
		logger,
	)

	return worker.Start(ctx)
}
