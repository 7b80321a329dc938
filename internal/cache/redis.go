// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list that receives game action records.
const DefaultQueueName = "uno_actions"

// publishTimeout bounds one RPUSH issued from the action hook.
const publishTimeout = 2 * time.Second

// ActionPublisher appends game action records to a Redis list, where an
// external consumer can read them. Records are never read back here.
type ActionPublisher struct {
	rdb    *redis.Client
	queue  string
	logger *logrus.Logger
}

// ConnectRedis dials addr and verifies it with a PING.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewActionPublisher publishes to queue, or DefaultQueueName if empty.
func NewActionPublisher(rdb *redis.Client, queue string, logger *logrus.Logger) *ActionPublisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &ActionPublisher{rdb: rdb, queue: queue, logger: logger}
}

// Queue is the list name records are pushed to.
func (p *ActionPublisher) Queue() string { return p.queue }

// PublishGameAction serializes action to JSON and pushes it onto the queue.
func (p *ActionPublisher) PublishGameAction(ctx context.Context, action models.GameAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal GameAction: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}

// OnAction is a game action hook. It runs under the room lock, so the push
// happens on its own goroutine and failures are only logged.
func (p *ActionPublisher) OnAction(action models.GameAction) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.PublishGameAction(ctx, action); err != nil {
			p.logger.WithFields(logrus.Fields{
				"room":   action.RoomID,
				"game":   action.GameID,
				"action": action.ActionType,
			}).WithError(err).Warn("publish game action")
		}
	}()
}

// Close releases the Redis connection pool.
func (p *ActionPublisher) Close() error { return p.rdb.Close() }
