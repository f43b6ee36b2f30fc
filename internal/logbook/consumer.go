package logbook

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/chinazes/secretsanta/internal/database"
)

// Consumer drains the log queue into Postgres. Records are accumulated
// into a batch and flushed either when the batch fills or on a timer.
type Consumer struct {
	redisClient *redis.Client
	log         logrus.FieldLogger
	batchSize   int
	flushDelay  time.Duration

	batchMu  sync.Mutex
	batch    []Record
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewConsumer builds a Consumer tuned from environment variables:
// LOG_BATCH_SIZE (default 20), LOG_FLUSH_MS (default 500), REDIS_ADDR.
func NewConsumer(log logrus.FieldLogger) *Consumer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	batchSize := getEnvInt("LOG_BATCH_SIZE", 20)
	flushMs := getEnvInt("LOG_FLUSH_MS", 500)

	rdb := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		redisClient: rdb,
		log:         log,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		batch:       make([]Record, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run blocks draining the queue until Stop is called.
func (c *Consumer) Run() {
	go c.readLoop()
	c.log.Info("logbook worker started")
	<-c.ctx.Done()
	c.flush()
	c.log.Info("logbook worker shutting down")
}

// Stop cancels the worker; Run flushes the remaining batch and returns.
func (c *Consumer) Stop() {
	c.cancelFn()
}

func (c *Consumer) readLoop() {
	ticker := time.NewTicker(c.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("LOG_QUEUE_NAME", DefaultQueueName)

	for {
		select {
		case <-c.ctx.Done():
			return

		case <-ticker.C:
			c.flush()

		default:
			// BLPop with a short timeout so cancellation is noticed.
			res, err := c.redisClient.BLPop(c.ctx, 3*time.Second, queueName).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) {
					c.log.Errorf("BLPop: %v", err)
				}
				continue
			}
			if len(res) < 2 {
				continue
			}

			var rec Record
			if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
				c.log.Warnf("dropping invalid log record: %v", err)
				continue
			}

			c.batchMu.Lock()
			c.batch = append(c.batch, rec)
			full := len(c.batch) >= c.batchSize
			c.batchMu.Unlock()
			if full {
				c.flush()
			}
		}
	}
}

// flush writes the pending batch to the logs table in one transaction.
func (c *Consumer) flush() {
	c.batchMu.Lock()
	if len(c.batch) == 0 {
		c.batchMu.Unlock()
		return
	}
	pending := c.batch
	c.batch = make([]Record, 0, c.batchSize)
	c.batchMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `INSERT INTO logs (timestamp, log_type, action, actor_id, details)
		      VALUES ($1, $2, $3, $4, $5)`
		for _, rec := range pending {
			ts := time.UnixMilli(rec.Timestamp)
			if _, err := tx.Exec(ctx, q, ts, rec.Category, rec.Action, rec.ActorID, []byte(rec.Details)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.log.Errorf("failed to flush %d log records: %v", len(pending), err)
		// put the records back so they are retried on the next flush
		c.batchMu.Lock()
		c.batch = append(pending, c.batch...)
		c.batchMu.Unlock()
	}
}
