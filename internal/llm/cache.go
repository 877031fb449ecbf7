package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// resultCache is the backend CachingLadder stores responses in. Two
// implementations exist: an in-process go-cache store (the default, no
// extra infrastructure required) and a Redis-backed store for deployments
// that run more than one replica and want cache hits to cross process
// boundaries.
type resultCache interface {
	get(ctx context.Context, key string) (Result, bool)
	set(ctx context.Context, key string, result Result)
}

// CachingLadder wraps a Ladder with a response cache keyed on
// (systemPrompt, userMessage), so retrying the exact same parse (a pilot
// resubmitting unchanged text, or a request retried after a transient
// client error) never re-bills a provider call.
type CachingLadder struct {
	ladder *Ladder
	cache  resultCache
}

// NewCachingLadder wraps ladder with an in-process TTL cache; entries are
// swept every 2*ttl per go-cache's janitor convention.
func NewCachingLadder(ladder *Ladder, ttl time.Duration) *CachingLadder {
	return &CachingLadder{
		ladder: ladder,
		cache:  &memResultCache{cache: gocache.New(ttl, 2*ttl)},
	}
}

// NewRedisCachingLadder wraps ladder with a Redis-backed cache, so
// independently scaled replicas of the pipeline share LLM response hits
// instead of each paying for the same provider call once.
func NewRedisCachingLadder(ladder *Ladder, client *redis.Client, ttl time.Duration) *CachingLadder {
	return &CachingLadder{
		ladder: ladder,
		cache:  &redisResultCache{client: client, ttl: ttl},
	}
}

// Complete returns a cached Result if present, otherwise delegates to the
// wrapped Ladder and caches a successful response.
func (c *CachingLadder) Complete(ctx context.Context, systemPrompt, userMessage string) (Result, error) {
	key := cacheKey(systemPrompt, userMessage)
	if result, ok := c.cache.get(ctx, key); ok {
		return result, nil
	}
	result, err := c.ladder.Complete(ctx, systemPrompt, userMessage)
	if err != nil {
		return Result{}, err
	}
	c.cache.set(ctx, key, result)
	return result, nil
}

func cacheKey(systemPrompt, userMessage string) string {
	sum := sha256.Sum256([]byte(systemPrompt + "\x00" + userMessage))
	return hex.EncodeToString(sum[:])
}

type memResultCache struct {
	cache *gocache.Cache
}

func (m *memResultCache) get(_ context.Context, key string) (Result, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return Result{}, false
	}
	return v.(Result), true
}

func (m *memResultCache) set(_ context.Context, key string, result Result) {
	m.cache.SetDefault(key, result)
}

type redisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *redisResultCache) get(ctx context.Context, key string) (Result, bool) {
	raw, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (r *redisResultCache) set(ctx context.Context, key string, result Result) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	r.client.Set(ctx, redisKey(key), raw, r.ttl)
}

func redisKey(key string) string {
	return "vectorbid:llm:" + key
}
