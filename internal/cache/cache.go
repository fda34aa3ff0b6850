package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tagTTL bounds how long a tag's key set outlives its members. Slightly
// longer than any value TTL we hand out so ClearByTag still sees the keys.
const tagTTL = 24 * time.Hour

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = redis.Nil

// Cache is a Redis-backed TTL cache with tag-based group invalidation.
// Tags map to Redis sets of member keys; ClearByTag deletes every member.
// Keyed the same way as the old in-process cache but shared across
// instances and surviving restarts.
type Cache struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) key(k string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, k)
}

func (c *Cache) tagKey(tag string) string {
	return fmt.Sprintf("%s:cache_tag:%s", c.prefix, tag)
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error {
	if c == nil || c.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.key(key), payload, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, c.tagKey(tag), c.key(key))
		pipe.Expire(ctx, c.tagKey(tag), tagTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if c == nil || c.client == nil {
		return ErrMiss
	}

	payload, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(payload, dest)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(key)).Err()
}

// ClearByTag removes every key registered under the tag, then the tag set.
func (c *Cache) ClearByTag(ctx context.Context, tag string) error {
	if c == nil || c.client == nil {
		return nil
	}

	members, err := c.client.SMembers(ctx, c.tagKey(tag)).Result()
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	if len(members) > 0 {
		pipe.Del(ctx, members...)
	}
	pipe.Del(ctx, c.tagKey(tag))
	_, err = pipe.Exec(ctx)
	return err
}
