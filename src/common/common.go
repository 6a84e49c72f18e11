package common

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"pbs/src/lib"

	"github.com/redis/go-redis/v9"
)

const (
	ProductsCacheKey = "catalog:products"
	CarouselCacheKey = "catalog:carousel"

	catalogCacheTTL = 10 * time.Minute
)

// CacheGetJSON loads a cached value into out. Returns false on miss or any
// cache error; the caller falls through to the database.
func CacheGetJSON(key string, out any) bool {
	rdb := lib.GetRedisClient()
	if rdb == nil {
		return false
	}
	val, err := rdb.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return false
	} else if err != nil {
		log.Printf("[cache] Error retrieving value for %s: %s\n", key, err.Error())
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		log.Printf("[cache] Error deserializing value for %s: %s\n", key, err.Error())
		return false
	}
	return true
}

func CacheSetJSON(key string, value any) {
	rdb := lib.GetRedisClient()
	if rdb == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		log.Printf("[cache] Error serializing value for %s: %s\n", key, err.Error())
		return
	}
	if err := rdb.Set(context.Background(), key, string(b), catalogCacheTTL).Err(); err != nil {
		log.Printf("[cache] Failed to set value for key %s: %s\n", key, err.Error())
	}
}

func CacheInvalidate(keys ...string) {
	rdb := lib.GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.Del(context.Background(), keys...).Err(); err != nil {
		log.Printf("[cache] Failed to invalidate keys %v: %s\n", keys, err.Error())
	}
}
