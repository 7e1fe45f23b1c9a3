package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"
	"sync"
	"time"
)

type LoginGuardPolicy struct {
	FreeAttempts int
	BaseDelay    time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	ResetWindow  time.Duration
}

// LoginGuard tracks failed logins per (username, client IP) pair and hands
// out exponentially growing cooldowns once the free attempts are spent.
type LoginGuard interface {
	Check(ctx context.Context, username, ip string) (time.Duration, error)
	RegisterFailure(ctx context.Context, username, ip string) (time.Duration, error)
	Reset(ctx context.Context, username, ip string) error
}

type NoopLoginGuard struct{}

func (NoopLoginGuard) Check(context.Context, string, string) (time.Duration, error) { return 0, nil }

func (NoopLoginGuard) RegisterFailure(context.Context, string, string) (time.Duration, error) {
	return 0, nil
}

func (NoopLoginGuard) Reset(context.Context, string, string) error { return nil }

type loginGuardEntry struct {
	failCount     int
	lastFailureAt time.Time
	cooldownUntil time.Time
}

// sweepThreshold forces an early sweep when a spray of distinct
// (username, IP) pairs fills the map faster than the reset window elapses.
const sweepThreshold = 10000

type InMemoryLoginGuard struct {
	mu        sync.Mutex
	policy    LoginGuardPolicy
	data      map[string]loginGuardEntry
	now       func() time.Time
	nextSweep time.Time
}

func NewInMemoryLoginGuard(policy LoginGuardPolicy) *InMemoryLoginGuard {
	policy = normalizeLoginGuardPolicy(policy)
	return &InMemoryLoginGuard{
		policy:    policy,
		data:      make(map[string]loginGuardEntry),
		now:       time.Now,
		nextSweep: time.Now().Add(policy.ResetWindow),
	}
}

// sweepLocked drops entries whose last failure is older than the reset
// window. Callers hold g.mu.
func (g *InMemoryLoginGuard) sweepLocked(now time.Time) {
	if now.Before(g.nextSweep) && len(g.data) < sweepThreshold {
		return
	}
	for key, entry := range g.data {
		if now.Sub(entry.lastFailureAt) > g.policy.ResetWindow {
			delete(g.data, key)
		}
	}
	g.nextSweep = now.Add(g.policy.ResetWindow)
}

func (g *InMemoryLoginGuard) Check(_ context.Context, username, ip string) (time.Duration, error) {
	now := g.now()
	key := loginGuardKey(username, ip)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sweepLocked(now)

	entry, ok := g.data[key]
	if !ok {
		return 0, nil
	}
	if now.Sub(entry.lastFailureAt) > g.policy.ResetWindow {
		delete(g.data, key)
		return 0, nil
	}
	if !now.Before(entry.cooldownUntil) {
		return 0, nil
	}
	return entry.cooldownUntil.Sub(now), nil
}

func (g *InMemoryLoginGuard) RegisterFailure(_ context.Context, username, ip string) (time.Duration, error) {
	now := g.now()
	key := loginGuardKey(username, ip)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sweepLocked(now)

	entry := g.data[key]
	if entry.lastFailureAt.IsZero() || now.Sub(entry.lastFailureAt) > g.policy.ResetWindow {
		entry.failCount = 0
	}
	entry.failCount++
	entry.lastFailureAt = now
	delay := g.policy.cooldown(entry.failCount)
	entry.cooldownUntil = now.Add(delay)
	g.data[key] = entry
	return delay, nil
}

func (g *InMemoryLoginGuard) Reset(_ context.Context, username, ip string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.data, loginGuardKey(username, ip))
	return nil
}

func (p LoginGuardPolicy) cooldown(failCount int) time.Duration {
	if failCount <= p.FreeAttempts {
		return 0
	}
	power := math.Pow(p.Multiplier, float64(failCount-p.FreeAttempts-1))
	delay := time.Duration(float64(p.BaseDelay) * power)
	if delay > p.MaxDelay || delay < 0 {
		return p.MaxDelay
	}
	return delay
}

// loginGuardKey keeps usernames case-sensitive, matching account lookup.
func loginGuardKey(username, ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = "unknown"
	}
	sum := sha256.Sum256([]byte(username + "\x00" + ip))
	return hex.EncodeToString(sum[:])
}

func normalizeLoginGuardPolicy(policy LoginGuardPolicy) LoginGuardPolicy {
	if policy.FreeAttempts < 0 {
		policy.FreeAttempts = 0
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 2 * time.Second
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 2
	}
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = 5 * time.Minute
	}
	if policy.ResetWindow <= 0 {
		policy.ResetWindow = 30 * time.Minute
	}
	return policy
}
