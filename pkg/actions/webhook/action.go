// Package webhook implements the webhook action: a JSON POST to an
// external URL carrying the firing context and, optionally, the entity
// snapshot.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lumahq/automation/pkg/protocol"
	"github.com/lumahq/automation/pkg/template"
)

const defaultTimeout = 30 * time.Second

type Action struct {
	URL           string
	Headers       map[string]string
	IncludeEntity bool

	client *http.Client
}

func NewAction(config map[string]any) (*Action, error) {
	url, _ := config["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("webhook requires 'url'")
	}

	headers := map[string]string{}

	if raw, ok := config["headers"].(map[string]any); ok {
		for k, v := range raw {
			headers[k] = fmt.Sprintf("%v", v)
		}
	}

	includeEntity := true
	if v, ok := config["includeEntity"].(bool); ok {
		includeEntity = v
	}

	timeout := defaultTimeout
	if v, ok := config["timeoutSeconds"].(float64); ok && v > 0 {
		timeout = time.Duration(v) * time.Second
	}

	return &Action{
		URL:           url,
		Headers:       headers,
		IncludeEntity: includeEntity,
		client:        &http.Client{Timeout: timeout},
	}, nil
}

func (a *Action) Execute(ctx context.Context, ectx protocol.ExecContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", "webhook")

	url := template.Render(a.URL, ectx.TemplateData())

	payload := map[string]any{
		"tenant_id":    ectx.TenantID,
		"rule_id":      ectx.RuleID,
		"execution_id": ectx.ExecutionID,
		"entity_type":  ectx.EntityType,
		"entity_id":    ectx.Entity.ID(),
		"fired_at":     time.Now().UTC().Format(time.RFC3339),
	}

	if a.IncludeEntity {
		payload["entity"] = ectx.Entity
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for k, v := range a.Headers {
		req.Header.Set(k, template.Render(v, ectx.TemplateData()))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	// Bounded read so a misbehaving endpoint cannot balloon the result.
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	logger.InfoContext(ctx, "Delivered webhook",
		"url", url,
		"status", resp.StatusCode)

	return map[string]any{
		"status_code": resp.StatusCode,
		"response":    string(respBody),
	}, nil
}
