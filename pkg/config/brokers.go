package config

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis parses the Redis URL and pings the server
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// ConnectNATS opens a NATS connection that keeps reconnecting in the background
func ConnectNATS(natsURL string) (*nats.Conn, error) {
	conn, err := nats.Connect(natsURL, nats.Name("userswatch"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %v: %w", natsURL, err)
	}
	return conn, nil
}
