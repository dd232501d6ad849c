package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/registry"
)

// Manager holds one engine per tenant, created lazily on first use with
// its rules loaded.
type Manager struct {
	persist  persistence.Persistence
	registry *registry.Registry
	logger   *slog.Logger

	mu      sync.RWMutex
	engines map[string]*Engine
}

func NewManager(persist persistence.Persistence, reg *registry.Registry, logger *slog.Logger) *Manager {
	return &Manager{
		persist:  persist,
		registry: reg,
		logger:   logger.With("module", "engine_manager"),
		engines:  make(map[string]*Engine),
	}
}

// Engine returns the tenant's engine, creating and loading it first if
// needed.
func (m *Manager) Engine(ctx context.Context, tenantID string) (*Engine, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	m.mu.RLock()
	engine, ok := m.engines[tenantID]
	m.mu.RUnlock()

	if ok {
		return engine, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have raced us here.
	if engine, ok := m.engines[tenantID]; ok {
		return engine, nil
	}

	engine = NewEngine(tenantID, m.persist, m.registry, m.logger)

	if err := engine.LoadRules(ctx); err != nil {
		return nil, err
	}

	m.engines[tenantID] = engine

	m.logger.InfoContext(ctx, "Created tenant engine", "tenant_id", tenantID)

	return engine, nil
}

// ReloadRules refreshes one tenant's rule snapshot.
func (m *Manager) ReloadRules(ctx context.Context, tenantID string) error {
	engine, err := m.Engine(ctx, tenantID)
	if err != nil {
		return err
	}

	return engine.ReloadRules(ctx)
}

// Tenants returns the ids of loaded engines.
func (m *Manager) Tenants() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tenants := make([]string, 0, len(m.engines))
	for tenantID := range m.engines {
		tenants = append(tenants, tenantID)
	}

	return tenants
}

// SweepTimeElapsed runs the time_elapsed check on every loaded engine.
func (m *Manager) SweepTimeElapsed(ctx context.Context) {
	m.mu.RLock()

	engines := make([]*Engine, 0, len(m.engines))
	for _, engine := range m.engines {
		engines = append(engines, engine)
	}

	m.mu.RUnlock()

	for _, engine := range engines {
		if _, err := engine.CheckTimeElapsedTriggers(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Time-elapsed sweep failed",
				"tenant_id", engine.TenantID(),
				"error", err)
		}
	}
}
