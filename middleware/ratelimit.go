package middleware

import (
	"sync"
	"time"
)

// LoginLimiter throttles failed login attempts per username. After
// maxFailures consecutive failures the username is locked for the
// lockout window; a successful login clears the counter.
type LoginLimiter struct {
	mu          sync.Mutex
	maxFailures int
	lockout     time.Duration
	attempts    map[string]*loginAttempts
}

type loginAttempts struct {
	failures    int
	lastFailure time.Time
}

func NewLoginLimiter(maxFailures int, lockout time.Duration) *LoginLimiter {
	return &LoginLimiter{
		maxFailures: maxFailures,
		lockout:     lockout,
		attempts:    map[string]*loginAttempts{},
	}
}

// Allowed reports whether a login attempt for username may proceed.
func (l *LoginLimiter) Allowed(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[username]
	if !ok || a.failures < l.maxFailures {
		return true
	}
	if time.Since(a.lastFailure) >= l.lockout {
		delete(l.attempts, username)
		return true
	}
	return false
}

// RecordFailure notes a failed attempt for username.
func (l *LoginLimiter) RecordFailure(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[username]
	if !ok {
		a = &loginAttempts{}
		l.attempts[username] = a
	}
	a.failures++
	a.lastFailure = time.Now()
}

// RecordSuccess clears the failure counter for username.
func (l *LoginLimiter) RecordSuccess(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, username)
}
