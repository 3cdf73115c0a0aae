package client

import (
	"log"

	"github.com/redis/go-redis/v9"
)

// InitRedisClient returns nil when no URL is configured; the payment cache
// degrades to a no-op in that case.
func InitRedisClient(redisURL string) *redis.Client {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("parse redis url:", err)
	}

	return redis.NewClient(opts)
}
