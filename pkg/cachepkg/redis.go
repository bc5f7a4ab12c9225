// Package cachepkg provides helpers to initialize the redis cache.
package cachepkg

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Setup configures a redis client from url and verifies connectivity.
func Setup(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
