package journal

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
)

const journalKey = "ticketbot:journal"

// Journal records every lifecycle event. Events are always logged; when redis
// is configured they are additionally pushed onto an append-only list so
// operators can reconstruct recent activity after the fact. Tickets
// themselves are never persisted.
type Journal struct {
	client *redis.Client
	logger *zap.Logger
}

// New connects to redis when an address is configured. Connection problems
// degrade the journal to log-only operation rather than failing startup.
func New(cfg config.RedisConfig, logger *zap.Logger) *Journal {
	if cfg.Addr == "" {
		logger.Info("redis not configured; journal is log-only")
		return &Journal{logger: logger}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}
	return &Journal{client: client, logger: logger}
}

// Register subscribes the journal to the full event stream.
func (j *Journal) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range events.All() {
		dispatcher.Subscribe(eventType, j.record)
	}
}

// Close closes the redis client.
func (j *Journal) Close() {
	if j != nil && j.client != nil {
		_ = j.client.Close()
	}
}

func (j *Journal) record(ctx context.Context, event events.Event) error {
	j.logger.Info("ticket event",
		zap.String("type", string(event.Type)),
		zap.String("channel_id", event.ChannelID),
		zap.String("actor", event.Actor))

	if j.client == nil {
		return nil
	}
	entry, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := j.client.LPush(ctx, journalKey, entry).Err(); err != nil {
		j.logger.Warn("journal write failed", zap.Error(err))
		return err
	}
	return nil
}
