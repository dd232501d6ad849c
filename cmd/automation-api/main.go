package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/lumahq/automation/pkg/cmd"
	"github.com/lumahq/automation/pkg/config"
	"github.com/lumahq/automation/pkg/events"
	"github.com/lumahq/automation/pkg/log"
	"github.com/lumahq/automation/pkg/notifications"
	"github.com/lumahq/automation/pkg/protocol"
	"github.com/lumahq/automation/pkg/workflow"
)

const defaultPort = 9090

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "automation-api",
		Usage:                 "Inspect rules and manage approvals and scheduled actions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
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
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing automation API")

			cfg := config.LoadEngineConfigOrDefault(command.String("config"))

			persist := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				if err := persist.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			outboundBus := cmd.NewEventBus(command.String("event-bus"), logger, "automation-api", events.OutboundTopic)
			defer func() {
				if err := outboundBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			outbox := notifications.NewOutbox(outboundBus, logger)

			var pendingStore protocol.PendingNotificationStore

			if cfg.NotificationsURL != "" {
				redisStore, err := notifications.NewRedisStoreFromURL(ctx, logger, cfg.NotificationsURL)
				if err != nil {
					return err
				}

				defer func() {
					if err := redisStore.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close notification store", "error", err)
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

			api := NewAPI(logger, persist, manager)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
