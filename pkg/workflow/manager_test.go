package workflow_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumahq/automation/pkg/actions/slacknotify"
	"github.com/lumahq/automation/pkg/actions/updatestatus"
	"github.com/lumahq/automation/pkg/persistence/file"
	"github.com/lumahq/automation/pkg/registry"
	"github.com/lumahq/automation/pkg/workflow"
)

func newTestManager(t *testing.T, p *file.Persistence) *workflow.Manager {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterAction(slacknotify.NewActionFactory(nil))
	reg.RegisterAction(updatestatus.NewActionFactory(p.Entities()))

	return workflow.NewManager(p, reg, slog.Default())
}

func TestManager_LazyEnginePerTenant(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	manager := newTestManager(t, p)
	ctx := context.Background()

	first, err := manager.Engine(ctx, "tenant-1")
	require.NoError(t, err)

	again, err := manager.Engine(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Same(t, first, again)

	other, err := manager.Engine(ctx, "tenant-2")
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	assert.ElementsMatch(t, []string{"tenant-1", "tenant-2"}, manager.Tenants())

	_, err = manager.Engine(ctx, "")
	assert.Error(t, err)
}

func TestManager_ReloadRulesPicksUpChanges(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	manager := newTestManager(t, p)
	ctx := context.Background()

	engine, err := manager.Engine(ctx, testTenant)
	require.NoError(t, err)
	assert.Empty(t, engine.Rules())

	saveRule(t, p, statusChangeRule("Added later", 5))

	require.NoError(t, manager.ReloadRules(ctx, testTenant))
	assert.Len(t, engine.Rules(), 1)
}
