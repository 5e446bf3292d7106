package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fee-desk/internal/config"
	"fee-desk/internal/logger"
	"fee-desk/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

type RedisClient struct {
	client *redis.Client
	cfg    *config.Config
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisClient{
		client: rdb,
		cfg:    cfg,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Client() *redis.Client {
	return r.client
}

type listPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// OutcomePublisher pushes terminal submissions onto a Redis list so an
// operator can reconcile them against the spreadsheet. Failed submissions
// also go to the list named by the DLQ suffix.
type OutcomePublisher struct {
	client  listPusher
	list    string
	dlqName string
	now     func() time.Time
	log     zerolog.Logger
}

func NewOutcomePublisher(redisClient *RedisClient, cfg *config.Config) *OutcomePublisher {
	return newOutcomePublisher(redisClient.Client(), cfg.Redis.OutcomeList, cfg.Redis.DLQSuffix)
}

func newOutcomePublisher(client listPusher, list, dlqSuffix string) *OutcomePublisher {
	p := &OutcomePublisher{
		client: client,
		list:   list,
		now:    time.Now,
		log:    logger.Component("outcome-publisher"),
	}
	if dlqSuffix != "" {
		p.dlqName = list + dlqSuffix
	}
	return p
}

// Notify never fails the caller; Redis errors are logged and dropped.
func (p *OutcomePublisher) Notify(ctx context.Context, item model.SubmissionItem) {
	if p.list == "" || !item.Status.IsTerminal() {
		return
	}

	data, err := json.Marshal(model.OutcomeRecord{
		Item:        item,
		CompletedAt: p.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		p.log.Error().Err(err).Str("item_id", item.ID).Msg("Failed to marshal outcome")
		return
	}

	if err := p.client.LPush(ctx, p.list, data).Err(); err != nil {
		p.log.Error().Err(err).Str("list", p.list).Str("item_id", item.ID).Msg("Failed to publish outcome")
	}

	if item.Status == model.SubmissionStatusError && p.dlqName != "" {
		if err := p.client.LPush(ctx, p.dlqName, data).Err(); err != nil {
			p.log.Error().Err(err).Str("dlq", p.dlqName).Str("item_id", item.ID).Msg("Failed to move outcome to DLQ")
		}
	}
}
