package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens a redis client for the relationship-status cache.
// Returns nil when no URL is configured or the server is unreachable; the
// cache is optional and the application runs without it.
func ConnectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("Redis not configured, relationship status cache disabled.")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Invalid REDIS_URL, relationship status cache disabled: %v", err)
		return nil
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Failed to connect to Redis, relationship status cache disabled: %v", err)
		return nil
	}

	log.Println("Redis connection established.")
	return client
}
