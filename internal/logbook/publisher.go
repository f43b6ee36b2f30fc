package logbook

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list the log worker drains.
var DefaultQueueName = "santa_logs"

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// ConnectRedis initializes the global Redis client from environment:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// Publish serializes the payload and pushes it onto the log queue.
func Publish(ctx context.Context, actorID uuid.UUID, p Payload) error {
	rec, err := NewRecord(actorID, p)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal log record: %w", err)
	}

	queueName := getEnv("LOG_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// Log publishes best-effort: logging must never fail the request that
// produced the action, so errors are only warned about.
func Log(ctx context.Context, logger logrus.FieldLogger, actorID uuid.UUID, p Payload) {
	if Rdb == nil {
		return
	}
	if err := Publish(ctx, actorID, p); err != nil {
		if logger == nil {
			logger = logrus.StandardLogger()
		}
		logger.Warnf("failed to publish %s log record: %v", p.Action(), err)
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
