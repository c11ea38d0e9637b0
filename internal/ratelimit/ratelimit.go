// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds rate limiting configuration
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxRequests   int           // Maximum requests per window
	CleanupPeriod time.Duration // How often to clean up old entries
}

// DefaultChatConfig returns sensible defaults for the generation endpoint,
// which is the only expensive surface worth throttling.
func DefaultChatConfig() *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxRequests:   30,
		CleanupPeriod: 10 * time.Minute,
	}
}

// requestRecord tracks requests for one client within the current window
type requestRecord struct {
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
}

// Info describes the limiter's decision for one request.
type Info struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// MemoryRateLimiter implements in-memory sliding-window rate limiting
type MemoryRateLimiter struct {
	config   *Config
	requests map[string]*requestRecord
	mu       sync.Mutex
	stopCh   chan struct{}
}

// NewMemoryRateLimiter creates a new in-memory rate limiter and starts
// its cleanup loop.
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:   config,
		requests: make(map[string]*requestRecord),
		stopCh:   make(chan struct{}),
	}
	go limiter.cleanupLoop()
	return limiter
}

// Allow checks if a request should be allowed
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *Info) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	record, exists := rl.requests[identifier]

	if !exists || now.Sub(record.FirstSeen) > rl.config.WindowSize {
		rl.requests[identifier] = &requestRecord{Count: 1, FirstSeen: now, LastSeen: now}
		return true, &Info{
			Allowed:   true,
			Remaining: rl.config.MaxRequests - 1,
			ResetTime: now.Add(rl.config.WindowSize),
		}
	}

	record.LastSeen = now
	resetTime := record.FirstSeen.Add(rl.config.WindowSize)

	if record.Count >= rl.config.MaxRequests {
		return false, &Info{
			Allowed:    false,
			Remaining:  0,
			ResetTime:  resetTime,
			RetryAfter: time.Until(resetTime),
		}
	}

	record.Count++
	return true, &Info{
		Allowed:   true,
		Remaining: rl.config.MaxRequests - record.Count,
		ResetTime: resetTime,
	}
}

// Stop terminates the cleanup loop.
func (rl *MemoryRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.config.WindowSize)
	for identifier, record := range rl.requests {
		if record.LastSeen.Before(cutoff) {
			delete(rl.requests, identifier)
		}
	}
}

// GetClientIP extracts the client address, honoring proxy headers.
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
