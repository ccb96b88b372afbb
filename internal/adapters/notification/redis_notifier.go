package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	portssvc "github.com/SscSPs/shared_ledger_app/internal/core/ports/services"
	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects to Redis. It returns nil when addr is empty or the
// server does not answer, in which case commit events are only logged.
func NewRedisClient(ctx context.Context, addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis connection failed, continuing without Redis", slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil
	}
	slog.Info("Redis connection established", slog.String("addr", addr))
	return rdb
}

// RedisNotifier publishes commit events as JSON on a pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

var _ portssvc.CommitNotifier = (*RedisNotifier)(nil)

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) NotifyCommit(ctx context.Context, event domain.CommitEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode commit event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish commit event on %s: %w", n.channel, err)
	}
	return nil
}
