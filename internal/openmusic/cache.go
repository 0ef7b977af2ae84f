package openmusic

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Every cached entry shares the same expiry.
const cacheTTL = 1800 * time.Second

// Redis calls get their own short deadline so a slow cache never stalls a
// request longer than this.
const cacheOpTimeout = 2 * time.Second

// Cache is a fail-open wrapper around Redis. Every operation degrades to a
// miss or a no-op when the backend is unavailable; the relational store
// stays the source of truth.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Lookup returns the cached value and whether it was present. Backend
// errors and timeouts count as misses.
func (c *Cache) Lookup(ctx context.Context, key string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("openmusic: cache get %s: %v", key, err)
		}
		return "", false
	}
	return val, true
}

// Store replaces any prior entry under key with the fixed TTL.
func (c *Cache) Store(ctx context.Context, key, value string) {
	if c == nil || c.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, key, value, cacheTTL).Err(); err != nil {
		log.Printf("openmusic: cache set %s: %v", key, err)
	}
}

// Drop removes entries immediately. Removing absent keys is not an error,
// and a failed drop only risks staleness until the TTL expires.
func (c *Cache) Drop(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("openmusic: cache del %v: %v", keys, err)
	}
}

// DropPrefix removes every key under prefix via SCAN. Used for the song
// search listings, whose filter combinations cannot be enumerated.
func (c *Cache) DropPrefix(ctx context.Context, prefix string) {
	if c == nil || c.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("openmusic: cache scan %s: %v", prefix, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("openmusic: cache del %v: %v", keys, err)
	}
}

// Cache keys are derived from the resource type and every parameter that
// affects the result.

func albumKey(id string) string      { return "album:" + id }
func albumLikesKey(id string) string { return "album_likes:" + id }
func songKey(id string) string       { return "song:" + id }
func userKey(id string) string       { return "user:" + id }

func songsKey(title, performer string) string {
	if title == "" {
		title = "all"
	}
	if performer == "" {
		performer = "all"
	}
	return fmt.Sprintf("songs:%s:%s", title, performer)
}

func playlistsKey(userID string) string         { return "playlists:" + userID }
func playlistSongsKey(playlistID string) string { return "playlist_songs:" + playlistID }
func playlistActivitiesKey(id string) string    { return "playlist_activities:" + id }

const songsKeyPrefix = "songs:"
