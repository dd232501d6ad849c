package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lumahq/automation/pkg/models"
	"github.com/lumahq/automation/pkg/persistence"
)

// entityTables is the fixed entity-type to table mapping. Mutations on
// anything outside it fail with ErrUnknownEntityType.
var entityTables = map[string]string{
	"project":  "projects",
	"task":     "tasks",
	"order":    "orders",
	"creator":  "creators",
	"customer": "customers",
	"thread":   "threads",
	"contact":  "contacts",
}

var columnNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// EntityStore reads and mutates business entities owned by the host
// application. Rows are read whole as JSON so the store needs no
// per-table column knowledge.
type EntityStore struct {
	db *sql.DB
}

func NewEntityStore(db *sql.DB) *EntityStore {
	return &EntityStore{db: db}
}

func (s *EntityStore) Fetch(ctx context.Context, tenantID, entityType, entityID string) (models.Entity, error) {
	table, ok := entityTables[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", persistence.ErrUnknownEntityType, entityType)
	}

	query := fmt.Sprintf(`SELECT to_jsonb(t) FROM %s t WHERE tenant_id = $1 AND id = $2`, table)

	var raw []byte

	err := s.db.QueryRowContext(ctx, query, tenantID, entityID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrEntityNotFound
		}

		return nil, fmt.Errorf("failed to fetch %s: %w", entityType, err)
	}

	var entity models.Entity

	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("failed to decode %s row: %w", entityType, err)
	}

	return entity, nil
}

func (s *EntityStore) List(ctx context.Context, tenantID, entityType string) ([]models.Entity, error) {
	table, ok := entityTables[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", persistence.ErrUnknownEntityType, entityType)
	}

	query := fmt.Sprintf(`SELECT to_jsonb(t) FROM %s t WHERE tenant_id = $1`, table)

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entityType, err)
	}
	defer rows.Close()

	entities := make([]models.Entity, 0)

	for rows.Next() {
		var raw []byte

		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", entityType, err)
		}

		var entity models.Entity

		if err := json.Unmarshal(raw, &entity); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", entityType, err)
		}

		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", entityType, err)
	}

	return entities, nil
}

func (s *EntityStore) UpdateStatus(ctx context.Context, tenantID, entityType, entityID, newStatus string) error {
	table, ok := entityTables[entityType]
	if !ok {
		return fmt.Errorf("%w: %s", persistence.ErrUnknownEntityType, entityType)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $3, status_changed_at = NOW(), updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`, table)

	return s.execOne(ctx, query, tenantID, entityID, newStatus)
}

// UpdateField writes a direct column when the field name is plain, or
// merge-patches the metadata document when it is dotted.
func (s *EntityStore) UpdateField(ctx context.Context, tenantID, entityType, entityID, field string, value any) error {
	table, ok := entityTables[entityType]
	if !ok {
		return fmt.Errorf("%w: %s", persistence.ErrUnknownEntityType, entityType)
	}

	if strings.Contains(field, ".") {
		return s.patchMetadata(ctx, table, tenantID, entityID, field, value)
	}

	if !columnNamePattern.MatchString(field) {
		return fmt.Errorf("invalid field name %q", field)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`, table, field)

	return s.execOne(ctx, query, tenantID, entityID, value)
}

func (s *EntityStore) UpdateAssignment(ctx context.Context, tenantID, entityType, entityID, userID string) error {
	table, ok := entityTables[entityType]
	if !ok {
		return fmt.Errorf("%w: %s", persistence.ErrUnknownEntityType, entityType)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET assignee_id = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`, table)

	return s.execOne(ctx, query, tenantID, entityID, userID)
}

// patchMetadata reads the metadata document, sets the dotted path and
// writes it back. Runs in a transaction with the row locked so
// concurrent patches cannot drop each other's keys.
func (s *EntityStore) patchMetadata(ctx context.Context, table, tenantID, entityID, field string, value any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	selectQuery := fmt.Sprintf(
		`SELECT COALESCE(metadata, '{}'::jsonb) FROM %s WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, table)

	var raw []byte

	err = tx.QueryRowContext(ctx, selectQuery, tenantID, entityID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ErrEntityNotFound
		}

		return fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata map[string]any

	if err := json.Unmarshal(raw, &metadata); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}

	setPath(metadata, strings.Split(field, "."), value)

	patched, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	updateQuery := fmt.Sprintf(
		`UPDATE %s SET metadata = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`, table)

	if _, err := tx.ExecContext(ctx, updateQuery, tenantID, entityID, patched); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metadata patch: %w", err)
	}

	return nil
}

func (s *EntityStore) execOne(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.ErrEntityNotFound
	}

	return nil
}

// setPath writes value at the dotted path, creating intermediate maps
// and overwriting non-map intermediates.
func setPath(doc map[string]any, path []string, value any) {
	for i, key := range path {
		if i == len(path)-1 {
			doc[key] = value

			return
		}

		next, ok := doc[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[key] = next
		}

		doc = next
	}
}
