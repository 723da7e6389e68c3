package report

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"roulette-bot/internal/game/roulette"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "roulette.rounds"

// redisPublisher is the part of *redis.Client the publisher uses.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher broadcasts resolved rounds on a Redis channel.
type RedisPublisher struct {
	client  redisPublisher
	channel string
}

// NewRedisPublisher creates a publisher on channel.
func NewRedisPublisher(client redisPublisher, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends one round and returns the number of subscribers that got it.
func (p *RedisPublisher) Publish(ctx context.Context, result *roulette.RoundResult) (int64, error) {
	payload, err := Encode(result)
	if err != nil {
		return 0, err
	}
	return p.client.Publish(ctx, p.channel, payload).Result()
}

// ReportRound implements roulette.Reporter. Failures are logged.
func (p *RedisPublisher) ReportRound(ctx context.Context, result *roulette.RoundResult) {
	receivers, err := p.Publish(ctx, result)
	if err != nil {
		log.Error().Err(err).
			Str("channel", p.channel).
			Str("round_id", result.RoundID).
			Msg("Failed to publish round to redis")
		return
	}
	log.Debug().
		Str("channel", p.channel).
		Str("round_id", result.RoundID).
		Int64("receivers", receivers).
		Msg("Round published to redis")
}
