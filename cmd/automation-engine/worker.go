package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumahq/automation/pkg/config"
	"github.com/lumahq/automation/pkg/eventbus"
	"github.com/lumahq/automation/pkg/events"
	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/otelhelper"
	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/workflow"
)

// Worker consumes entity events, routes them to per-tenant engines and
// runs the two background jobs: the scheduled-action processor and the
// time-elapsed sweep.
type Worker struct {
	id           string
	cfg          config.EngineConfig
	persist      persistence.Persistence
	manager      *workflow.Manager
	entityBus    eventbus.EventBus
	executionBus eventbus.EventPublisher
	tracer       trace.Tracer
	logger       *slog.Logger
}

func NewWorker(
	id string,
	cfg config.EngineConfig,
	persist persistence.Persistence,
	manager *workflow.Manager,
	entityBus eventbus.EventBus,
	executionBus eventbus.EventPublisher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		id:           id,
		cfg:          cfg,
		persist:      persist,
		manager:      manager,
		entityBus:    entityBus,
		executionBus: executionBus,
		tracer:       tracer,
		logger:       logger.With("module", "engine_worker"),
	}
}

// Start begins the worker service and blocks until the context ends or
// a termination signal arrives.
func (w *Worker) Start(ctx context.Context) error {
	wCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.handleSignals(cancel)

	w.warmTenants(wCtx)

	if err := w.subscribe(wCtx); err != nil {
		return err
	}

	scheduler, err := w.startJobs(wCtx)
	if err != nil {
		return err
	}

	w.logger.Info("Engine worker started", "worker_id", w.id)

	<-wCtx.Done()

	jobCtx := scheduler.Stop()
	<-jobCtx.Done()

	w.logger.Info("Engine worker stopped")

	return nil
}

func (w *Worker) handleSignals(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		w.logger.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()
}

// warmTenants loads rule sets for the configured tenants up front so the
// first event doesn't pay the load.
func (w *Worker) warmTenants(ctx context.Context) {
	for _, tenantID := range w.cfg.Tenants {
		if _, err := w.manager.Engine(ctx, tenantID); err != nil {
			w.logger.Error("Failed to warm tenant engine", "tenant_id", tenantID, "error", err)
		}
	}
}

func (w *Worker) subscribe(ctx context.Context) error {
	if err := w.entityBus.Handle(events.EntityStatusChangedEvent, func(ctx context.Context, event interface{}) error {
		statusChanged, ok := event.(*events.EntityStatusChanged)
		if !ok {
			return nil
		}

		return w.handleStatusChanged(ctx, statusChanged)
	}); err != nil {
		return err
	}

	if err := w.entityBus.Handle(events.EntityEventOccurredEvent, func(ctx context.Context, event interface{}) error {
		occurred, ok := event.(*events.EntityEventOccurred)
		if !ok {
			return nil
		}

		return w.handleEntityEvent(ctx, occurred)
	}); err != nil {
		return err
	}

	if err := w.entityBus.Handle(events.RulesReloadRequestedEvent, func(ctx context.Context, event interface{}) error {
		reload, ok := event.(*events.RulesReloadRequested)
		if !ok {
			return nil
		}

		return w.handleReloadRequested(ctx, reload)
	}); err != nil {
		return err
	}

	return w.entityBus.Subscribe(ctx)
}

func (w *Worker) startJobs(ctx context.Context) (*cron.Cron, error) {
	scheduler := cron.New()

	processor := workflow.NewScheduledProcessor(w.persist.ScheduledActions(), w.manager, w.logger)

	if _, err := scheduler.AddFunc(w.cfg.ScheduledActionsSchedule, func() {
		processed, err := processor.Run(ctx, time.Now().UTC())
		if err != nil {
			w.logger.Error("Scheduled action run failed", "error", err)

			return
		}

		if processed > 0 {
			w.logger.Info("Processed scheduled actions", "count", processed)
		}
	}); err != nil {
		return nil, err
	}

	if _, err := scheduler.AddFunc(w.cfg.TimeElapsedSchedule, func() {
		w.manager.SweepTimeElapsed(ctx)
	}); err != nil {
		return nil, err
	}

	scheduler.Start()

	return scheduler, nil
}

func (w *Worker) handleStatusChanged(ctx context.Context, event *events.EntityStatusChanged) error {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "engine.handle_status_change",
		attribute.String(otelhelper.TenantIDKey, event.TenantID),
		attribute.String(otelhelper.EntityTypeKey, event.EntityType),
		attribute.String(otelhelper.EntityIDKey, event.EntityID),
	)
	defer span.End()

	engine, err := w.manager.Engine(ctx, event.TenantID)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	executions, err := engine.HandleStatusChange(ctx,
		event.EntityType, event.EntityID, event.FromStatus, event.ToStatus, event.User)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	w.publishExecutions(ctx, event.TenantID, executions)

	return nil
}

func (w *Worker) handleEntityEvent(ctx context.Context, event *events.EntityEventOccurred) error {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "engine.handle_entity_event",
		attribute.String(otelhelper.TenantIDKey, event.TenantID),
		attribute.String(otelhelper.EntityTypeKey, event.EntityType),
		attribute.String(otelhelper.EntityIDKey, event.EntityID),
	)
	defer span.End()

	engine, err := w.manager.Engine(ctx, event.TenantID)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	executions, err := engine.HandleEvent(ctx,
		event.EntityType, event.EntityID, event.EventName, event.Payload)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	w.publishExecutions(ctx, event.TenantID, executions)

	return nil
}

func (w *Worker) handleReloadRequested(ctx context.Context, event *events.RulesReloadRequested) error {
	w.logger.Info("Reloading rules", "tenant_id", event.TenantID)

	return w.manager.ReloadRules(ctx, event.TenantID)
}

// publishExecutions emits one audit event per recorded firing. Publish
// failures are logged; the firings themselves already persisted.
func (w *Worker) publishExecutions(ctx context.Context, tenantID string, executions []*models.WorkflowExecution) {
	for _, execution := range executions {
		event := events.ExecutionRecorded{
			BaseEvent: events.BaseEvent{
				ID:        execution.ID,
				Type:      events.ExecutionRecordedEvent,
				TenantID:  tenantID,
				Timestamp: time.Now().UTC(),
			},
			ExecutionID: execution.ID,
			RuleID:      execution.RuleID,
			EntityType:  execution.EntityType,
			EntityID:    execution.EntityID,
			Result:      string(execution.Result),
		}

		if err := w.executionBus.Publish(ctx, tenantID, event); err != nil {
			w.logger.Error("Failed to publish execution event",
				"execution_id", execution.ID,
				"error", err)
		}
	}
}
