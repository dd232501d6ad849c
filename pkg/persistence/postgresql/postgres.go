// Package postgresql provides the PostgreSQL persistence backend.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/persistence/sqlbase"
	"github.com/lumahq/automation/pkg/protocol"
)

// Persistence implements persistence.Persistence on PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	rules            *RuleRepository
	executions       *ExecutionRepository
	entityStates     *EntityStateRepository
	scheduledActions *ScheduledActionRepository
	entities         *EntityStore
	tasks            *TaskCreator
}

// NewPersistence opens the database, runs migrations and wires the
// repositories.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:               database,
		logger:           logger,
		rules:            NewRuleRepository(database, logger),
		executions:       NewExecutionRepository(database, logger),
		entityStates:     NewEntityStateRepository(database),
		scheduledActions: NewScheduledActionRepository(database, logger),
		entities:         NewEntityStore(database),
		tasks:            NewTaskCreator(database, logger),
	}, nil
}

func (p *Persistence) Rules() persistence.RuleRepository { return p.rules }

// RuleRepository exposes the concrete repository, which also carries the
// administrative Save used by tooling and tests.
func (p *Persistence) RuleRepository() *RuleRepository { return p.rules }

func (p *Persistence) Executions() persistence.ExecutionRepository { return p.executions }

func (p *Persistence) EntityStates() persistence.EntityStateRepository { return p.entityStates }

func (p *Persistence) ScheduledActions() persistence.ScheduledActionRepository {
	return p.scheduledActions
}

func (p *Persistence) Entities() persistence.EntityStore { return p.entities }

func (p *Persistence) Tasks() protocol.TaskCreator { return p.tasks }

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

var _ persistence.Persistence = (*Persistence)(nil)
