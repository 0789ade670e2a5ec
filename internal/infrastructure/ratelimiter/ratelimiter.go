package ratelimiter

import (
	"math"
	"net/http"
	"sync"
	"time"
)

const defaultSourceKey = "X-RateLimit-Key"

type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

// RateLimiter is a token bucket per source key. Buckets live in an
// expiring in-memory cache so idle sources get reclaimed.
type RateLimiter struct {
	maxRatePerMillisecond float64
	maxBurst              int
	cache                 *bucketCache
	cacheTTL              time.Duration
	sourceHeaderKey       string

	// Per-key locks so refill+take is atomic for each source
	locks sync.Map // map[string]*sync.Mutex
}

type bucketState struct {
	tokens   float64
	lastFill int64 // Unix milliseconds
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	CacheTTL         time.Duration
	SourceHeaderKey  string
}

func New(options Options) Limiter {
	if options.CacheTTL == 0 {
		options.CacheTTL = 10 * time.Second
	}

	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond
	}

	if options.SourceHeaderKey == "" {
		options.SourceHeaderKey = defaultSourceKey
	}

	return &RateLimiter{
		maxRatePerMillisecond: float64(options.MaxRatePerSecond) / 1000.0,
		maxBurst:              options.MaxBurst,
		cache:                 newBucketCache(),
		cacheTTL:              options.CacheTTL,
		sourceHeaderKey:       options.SourceHeaderKey,
	}
}

func (rl *RateLimiter) getLock(sourceKey string) *sync.Mutex {
	lock, _ := rl.locks.LoadOrStore(sourceKey, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (rl *RateLimiter) getState(sourceKey string, now int64) bucketState {
	state, ok := rl.cache.Get(sourceKey)
	if !ok {
		return bucketState{tokens: float64(rl.maxBurst), lastFill: now}
	}
	return state
}

func (rl *RateLimiter) refillTokens(state bucketState, now int64) bucketState {
	elapsed := now - state.lastFill
	if elapsed <= 0 {
		return state
	}

	tokens := state.tokens + float64(elapsed)*rl.maxRatePerMillisecond
	if tokens > float64(rl.maxBurst) {
		tokens = float64(rl.maxBurst)
	}

	return bucketState{tokens: tokens, lastFill: now}
}

func (rl *RateLimiter) Allow(sourceKey string) bool {
	lock := rl.getLock(sourceKey)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UnixMilli()
	state := rl.refillTokens(rl.getState(sourceKey, now), now)

	if state.tokens >= 1 {
		state.tokens--
		rl.cache.Set(sourceKey, state, rl.cacheTTL)
		return true
	}

	rl.cache.Set(sourceKey, state, rl.cacheTTL)
	return false
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	lock := rl.getLock(sourceKey)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UnixMilli()
	state := rl.refillTokens(rl.getState(sourceKey, now), now)
	rl.cache.Set(sourceKey, state, rl.cacheTTL)

	return int(math.Floor(state.tokens))
}

func (rl *RateLimiter) GetMaxBurst() int {
	return rl.maxBurst
}

func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if key := r.Header.Get(rl.sourceHeaderKey); key != "" {
		return key
	}

	// Fall back to IP address
	return r.RemoteAddr
}
