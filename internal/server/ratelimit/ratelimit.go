// Package ratelimit limits requests per client and endpoint with token buckets.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // requests per Window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	IdleTTL         time.Duration // buckets unused this long are forgotten
	MaxBuckets      int
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns limits suitable for a single public instance.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		IdleTTL:         time.Hour,
		MaxBuckets:      100_000,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model-backed operations
		{Path: "/interview/start", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/interview/respond", Method: "POST", Limit: 300, Window: time.Hour, Burst: 20},
		{Path: "/api/resumes/process/", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/api/resumes/match/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/api/resumes/cover-letter", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Credential endpoints
		{Path: "/api/auth/login/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/api/auth/register/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/api/auth/change-password/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
	}
}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Exact paths win over prefixes; "/api/resumes/cover-letter" also covers
// "/api/resumes/cover-letters/generate/". Health checks are unlimited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if (path == "/health" || path == "/") && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	config  *Config
	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	ttl := config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	size := config.MaxBuckets
	if size <= 0 {
		size = 100_000
	}
	return &Limiter{
		config:  config,
		buckets: expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
	}
}

// Allow reports whether a request from clientID to endpoint may proceed.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	ec := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if ec == nil {
		ec = &EndpointConfig{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
	}
	if ec.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	// Prefix-matched endpoints share one bucket.
	key := clientID + ":" + method + ":" + endpoint
	if ec.Path != "" {
		key = clientID + ":" + method + ":" + ec.Path
	}
	bucket := l.bucket(key, ec)

	now := time.Now()
	allowed := bucket.AllowN(now, 1)
	tokens := bucket.TokensAt(now)
	info := Info{
		Allowed:   allowed,
		Limit:     ec.Limit,
		Remaining: max(0, int(tokens)),
		ResetTime: now.Add(untilTokens(bucket, float64(bucket.Burst())-tokens)),
	}
	if !allowed {
		info.RetryAfter = untilTokens(bucket, 1-tokens)
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, ec *EndpointConfig) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets.Get(key); ok {
		return b
	}
	burst := ec.Burst
	if burst <= 0 {
		burst = ec.Limit
	}
	window := ec.Window
	if window <= 0 {
		window = time.Minute
	}
	b := rate.NewLimiter(rate.Limit(float64(ec.Limit)/window.Seconds()), burst)
	l.buckets.Add(key, b)
	return b
}

func untilTokens(b *rate.Limiter, missing float64) time.Duration {
	if missing <= 0 || b.Limit() <= 0 {
		return 0
	}
	return time.Duration(missing / float64(b.Limit()) * float64(time.Second))
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	return l.buckets.Len()
}
