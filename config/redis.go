package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// ConnectRedis initializes the shared Redis client when REDIS_ENABLED=true.
// It returns (nil, nil) when Redis is disabled or APPENV=test; callers treat a
// nil client as "no session store" and skip revocation and rate limiting.
func ConnectRedis() (*redis.Client, error) {
	var err error
	redisOnce.Do(func() {
		if os.Getenv("APPENV") == "test" || os.Getenv("REDIS_ENABLED") != "true" {
			return
		}

		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		dbNum := 0
		if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
			if v, e := strconv.Atoi(dbStr); e == nil {
				dbNum = v
			}
		}

		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASS"),
			DB:       dbNum,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err = rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			err = fmt.Errorf("redis ping failed: %w", err)
			return
		}
		redisClient = rdb
	})
	return redisClient, err
}

// GetRedisClient returns the initialized Redis client (nil if disabled or unreachable).
func GetRedisClient() *redis.Client {
	return redisClient
}

// SetRedisClientForTest installs client as the shared session store. Later
// ConnectRedis calls return it instead of dialing.
func SetRedisClientForTest(client *redis.Client) {
	redisOnce.Do(func() {})
	redisClient = client
}

// ResetRedisClientForTest forgets the shared client so ConnectRedis dials again.
func ResetRedisClientForTest() {
	redisClient = nil
	redisOnce = sync.Once{}
}
