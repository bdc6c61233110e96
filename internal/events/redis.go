package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisPublisher publishes events as JSON on a Redis pub/sub channel
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     *logrus.Entry
}

func NewRedisPublisher(client *redis.Client, channel string, log *logrus.Entry) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, log: log}
}

func (p *RedisPublisher) PublishNewFollower(ctx context.Context, event NewFollower) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).Error("error marshaling follow event")
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.WithError(err).WithField("channel", p.channel).Error("error publishing follow event to Redis")
	}
}

