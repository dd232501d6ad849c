// Package notifications provides the redis-backed store for pending
// slack notifications and action suggestions, plus the event-bus outbox
// for outbound messages.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/lumahq/automation/pkg/protocol"
)

const (
	keyPrefix = "automation:pending:"

	// Pending notifications are advisory; stale ones age out.
	defaultTTL = 7 * 24 * time.Hour

	maxQueueLength = 1000
)

// RedisStore implements protocol.PendingNotificationStore on a redis
// list per tenant, newest first, capped so an unattended queue cannot
// grow without bound.
type RedisStore struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func NewRedisStore(client redis.UniversalClient, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger.With("module", "notifications"),
	}
}

// NewRedisStoreFromURL dials redis from a URL such as
// redis://localhost:6379/0.
func NewRedisStoreFromURL(ctx context.Context, logger *slog.Logger, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisStore(client, logger), nil
}

func (s *RedisStore) key(tenantID string) string {
	return keyPrefix + tenantID
}

func (s *RedisStore) Push(ctx context.Context, n protocol.PendingNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal pending notification: %w", err)
	}

	key := s.key(n.TenantID)

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, maxQueueLength-1)
	pipe.Expire(ctx, key, defaultTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push pending notification: %w", err)
	}

	s.logger.DebugContext(ctx, "Stored pending notification",
		"tenant_id", n.TenantID,
		"kind", n.Kind)

	return nil
}

// Recent returns up to limit notifications for a tenant, newest first.
func (s *RedisStore) Recent(ctx context.Context, tenantID string, limit int) ([]protocol.PendingNotification, error) {
	if limit <= 0 {
		limit = 50
	}

	raw, err := s.client.LRange(ctx, s.key(tenantID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read pending notifications: %w", err)
	}

	notifications := make([]protocol.PendingNotification, 0, len(raw))

	for _, item := range raw {
		var n protocol.PendingNotification

		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pending notification: %w", err)
		}

		notifications = append(notifications, n)
	}

	return notifications, nil
}

// Close releases the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ protocol.PendingNotificationStore = (*RedisStore)(nil)
