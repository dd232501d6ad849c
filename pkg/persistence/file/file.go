// Package file provides a file-system persistence backend, mainly for
// local development and tests. Every record is one JSON document.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumahq/automation/pkg/persistence"
	"github.com/lumahq/automation/pkg/protocol"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root string

	rules            *RuleRepository
	executions       *ExecutionRepository
	entityStates     *EntityStateRepository
	scheduledActions *ScheduledActionRepository
	entities         *EntityStore
	tasks            *TaskCreator
}

func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	entities := NewEntityStore(cleanRoot)

	return &Persistence{
		root:             cleanRoot,
		rules:            NewRuleRepository(cleanRoot),
		executions:       NewExecutionRepository(cleanRoot),
		entityStates:     NewEntityStateRepository(cleanRoot),
		scheduledActions: NewScheduledActionRepository(cleanRoot),
		entities:         entities,
		tasks:            NewTaskCreator(entities),
	}
}

func (p *Persistence) Rules() persistence.RuleRepository { return p.rules }

// RuleRepository exposes the concrete repository with its administrative
// Save.
func (p *Persistence) RuleRepository() *RuleRepository { return p.rules }

func (p *Persistence) Executions() persistence.ExecutionRepository { return p.executions }

func (p *Persistence) EntityStates() persistence.EntityStateRepository { return p.entityStates }

func (p *Persistence) ScheduledActions() persistence.ScheduledActionRepository {
	return p.scheduledActions
}

func (p *Persistence) Entities() persistence.EntityStore { return p.entities }

// EntityStore exposes the concrete store with its Save used to seed
// development data.
func (p *Persistence) EntityStore() *EntityStore { return p.entities }

func (p *Persistence) Tasks() protocol.TaskCreator { return p.tasks }

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs no cleanup for file persistence.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

var _ persistence.Persistence = (*Persistence)(nil)

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read record: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return true, nil
}

func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	files := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		files = append(files, filepath.Join(dir, entry.Name()))
	}

	return files, nil
}
