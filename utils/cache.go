package utils

import (
	"context"
	"log"
	"time"

	"ambulink/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient backs short-lived response caches.
	CacheClient *redis.Client
	// GeoClient holds the driver position index.
	GeoClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects every Redis client. It is a no-op when REDIS_ADDR is empty.
func InitRedis() {
	if !config.RedisEnabled() {
		GetLogger().Info("Redis not configured, caches and escalation disabled")
		return
	}
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	GeoClient = newRedisClient(config.AppConfig.RedisGeoDB, "Geo")
}

// GetCacheClient returns the cache client, or nil when Redis is disabled.
func GetCacheClient() *redis.Client {
	return CacheClient
}

// GetGeoClient returns the driver position client, or nil when Redis is disabled.
func GetGeoClient() *redis.Client {
	return GeoClient
}

// RedisClients lists the connected clients for health checks.
func RedisClients() []*redis.Client {
	var clients []*redis.Client
	for _, c := range []*redis.Client{CacheClient, GeoClient} {
		if c != nil {
			clients = append(clients, c)
		}
	}
	return clients
}

// CloseRedis closes every open client.
func CloseRedis() {
	for _, c := range RedisClients() {
		_ = c.Close()
	}
}
