package db

import (
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis builds a client for the update fan-out hub. A missing addr
// returns nil and the hub stays in-process only.
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
