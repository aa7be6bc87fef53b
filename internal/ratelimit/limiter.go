// Package ratelimit throttles credential guessing on login and bulk
// account creation on register, keyed by hashed identifier and client IP.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Config struct {
	// Login failures
	LoginMaxFailures  int           // Failures per identifier before lockout (default: 5)
	LoginLockout      time.Duration // Lockout after max failures (default: 10m)
	LoginMaxIPPerHour int           // Login attempts per IP per hour (default: 30)

	// Registration
	RegisterMaxIPPerHour int // Sign-ups per IP per hour (default: 10)

	Clock Clock
}

func DefaultConfig() *Config {
	return &Config{
		LoginMaxFailures:     5,
		LoginLockout:         10 * time.Minute,
		LoginMaxIPPerHour:    30,
		RegisterMaxIPPerHour: 10,
	}
}

type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count    int
	firstAt  time.Time
	lastAt   time.Time
	lockedAt time.Time // zero if not locked
}

type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	// Keyed by hash of identifier or IP
	loginByID    map[string]*entry
	loginByIP    map[string]*entry
	registerByIP map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		loginByID:     make(map[string]*entry),
		loginByIP:     make(map[string]*entry),
		registerByIP:  make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckLogin reports whether a login attempt may reach the backend.
// It does not record anything.
func (l *Limiter) CheckLogin(identifier, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	idKey := l.hashKey("login:id:", normalizeIdentifier(identifier))
	ipKey := l.hashKey("login:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.loginByID[idKey]; e != nil && !e.lockedAt.IsZero() {
		elapsed := now.Sub(e.lockedAt)
		if elapsed < l.config.LoginLockout {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.LoginLockout - elapsed,
				Reason:     "lockout",
			}
		}
	}

	return hourly(l.loginByIP[ipKey], l.config.LoginMaxIPPerHour, now)
}

// RecordLoginAttempt counts an attempt against the IP budget.
func (l *Limiter) RecordLoginAttempt(ip string) {
	now := l.clock.Now()
	ipKey := l.hashKey("login:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()
	bump(l.loginByIP, ipKey, now)
}

// RecordLoginFailure counts a rejected password. It returns true when this
// failure started a lockout.
func (l *Limiter) RecordLoginFailure(identifier string) (lockedOut bool) {
	now := l.clock.Now()
	idKey := l.hashKey("login:id:", normalizeIdentifier(identifier))

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.loginByID[idKey]
	switch {
	case e == nil:
		e = &entry{count: 1, firstAt: now, lastAt: now}
		l.loginByID[idKey] = e
	case !e.lockedAt.IsZero() && now.Sub(e.lockedAt) >= l.config.LoginLockout:
		e = &entry{count: 1, firstAt: now, lastAt: now}
		l.loginByID[idKey] = e
	default:
		e.count++
		e.lastAt = now
	}

	if e.count >= l.config.LoginMaxFailures && e.lockedAt.IsZero() {
		e.lockedAt = now
		lockedOut = true
	}
	return lockedOut
}

// ResetLogin forgets failures after a successful login.
func (l *Limiter) ResetLogin(identifier string) {
	idKey := l.hashKey("login:id:", normalizeIdentifier(identifier))
	l.mu.Lock()
	delete(l.loginByID, idKey)
	l.mu.Unlock()
}

func (l *Limiter) CheckRegister(ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	ipKey := l.hashKey("register:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	return hourly(l.registerByIP[ipKey], l.config.RegisterMaxIPPerHour, now)
}

// hourly refuses once an IP has spent its budget inside the current window.
func hourly(e *entry, budget int, now time.Time) LimitResult {
	if e == nil {
		return LimitResult{Allowed: true}
	}
	age := now.Sub(e.firstAt)
	if age >= time.Hour || e.count < budget {
		return LimitResult{Allowed: true}
	}
	return LimitResult{RetryAfter: time.Hour - age, Reason: "ip_hourly_limit"}
}

func (l *Limiter) RecordRegister(ip string) {
	now := l.clock.Now()
	ipKey := l.hashKey("register:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()
	bump(l.registerByIP, ipKey, now)
}

// bump increments an hourly window, restarting it when it has elapsed.
func bump(m map[string]*entry, key string, now time.Time) {
	e := m[key]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		m[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier lowercases the identifier to prevent case-based bypass.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	maxAge := l.config.LoginLockout + time.Hour
	for k, e := range l.loginByID {
		if now.Sub(e.lastAt) > maxAge {
			delete(l.loginByID, k)
		}
	}
	for _, m := range []map[string]*entry{l.loginByIP, l.registerByIP} {
		for k, e := range m {
			if now.Sub(e.lastAt) > time.Hour {
				delete(m, k)
			}
		}
	}
}

// SanitizeIdentifier masks a username or email for logging.
func SanitizeIdentifier(identifier string) string {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if local, domain, ok := strings.Cut(identifier, "@"); ok {
		if len(local) > 2 {
			return local[:2] + "***@" + domain
		}
		return "***@" + domain
	}
	if len(identifier) > 2 {
		return identifier[:2] + "***"
	}
	return "***"
}

// LogRateLimitExceeded logs a rate limit event with sanitized identifier.
func LogRateLimitExceeded(limitType, identifier, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Str("type", limitType).
		Str("identifier", SanitizeIdentifier(identifier)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Rate limit exceeded")
}
