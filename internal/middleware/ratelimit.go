package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ErrNoLimiterStore is returned when an enabled limiter has no Redis client.
var ErrNoLimiterStore = errors.New("rate limit store unavailable")

// windowScript counts one hit in a fixed window and returns the count and
// the milliseconds left in the window.
var windowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RateRule is one named fixed-window limit.
type RateRule struct {
	Name   string
	Limit  int
	Window time.Duration
	// FailClosed answers 503 when Redis cannot be reached. Otherwise the
	// request goes through.
	FailClosed bool
}

// RateDecision is the outcome of counting one request against a rule.
type RateDecision struct {
	Allowed   bool
	Remaining int
	Reset     time.Duration
}

// RateLimiter enforces RateRules with counters in Redis.
type RateLimiter struct {
	rdb      *redis.Client
	disabled bool
}

// NewRateLimiter returns a limiter backed by rdb. Limits are off in the
// test, development and stress environments.
func NewRateLimiter(rdb *redis.Client, env string) *RateLimiter {
	switch env {
	case "", "test", "development", "stress":
		return &RateLimiter{rdb: rdb, disabled: true}
	}
	return &RateLimiter{rdb: rdb}
}

// Allow counts one request by id against rule.
func (l *RateLimiter) Allow(ctx context.Context, rule RateRule, id string) (RateDecision, error) {
	if l.disabled {
		return RateDecision{Allowed: true, Remaining: rule.Limit}, nil
	}
	if l.rdb == nil {
		return RateDecision{}, ErrNoLimiterStore
	}

	res, err := windowScript.Run(ctx, l.rdb, []string{"rl:" + rule.Name + ":" + id}, rule.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return RateDecision{}, err
	}
	count, ttl := res[0], res[1]
	if ttl < 0 {
		ttl = rule.Window.Milliseconds()
	}
	remaining := rule.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return RateDecision{
		Allowed:   count <= int64(rule.Limit),
		Remaining: remaining,
		Reset:     time.Duration(ttl) * time.Millisecond,
	}, nil
}

// Handler returns middleware enforcing rule. Authenticated requests are
// counted per user, the rest per client IP.
func (l *RateLimiter) Handler(rule RateRule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rule := rule
		if rule.Name == "" {
			rule.Name = c.Route().Path
		}
		id := "ip:" + c.IP()
		if uid, ok := c.Locals(LocalUserID).(string); ok && uid != "" {
			id = "user:" + uid
		}

		d, err := l.Allow(c.UserContext(), rule, id)
		if err != nil {
			if rule.FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
					slog.String("rule", rule.Name), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "rate limit unavailable"})
			}
			return c.Next()
		}
		if l.disabled {
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int((d.Reset+time.Second-1)/time.Second)))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
		}
		return c.Next()
	}
}
