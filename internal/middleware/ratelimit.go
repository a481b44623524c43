package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const ErrRateLimitExceeded = "rate_limit_exceeded"

// RateLimit ограничивает запросы с одного IP корзиной токенов.
// Лимитеры живут в LRU, давно молчавшие клиенты вытесняются по TTL
func RateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	limiters := expirable.NewLRU[string, *rate.Limiter](cfg.CacheSize, nil, cfg.TTL)
	limit := rate.Every(cfg.Interval)

	getLimiter := func(ip string) *rate.Limiter {
		if limiter, ok := limiters.Get(ip); ok {
			return limiter
		}
		limiter := rate.NewLimiter(limit, cfg.Burst)
		limiters.Add(ip, limiter)
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIp(r)
			limiter := getLimiter(ip)
			now := time.Now()

			reservation := limiter.ReserveN(now, 1)
			delay := reservation.DelayFrom(now)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))

			if !reservation.OK() || delay > 0 {
				reservation.CancelAt(now)

				retryAfter := int(math.Ceil(delay.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}

				logger.Warn("HTTP: Превышен лимит запросов",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", ip),
					zap.Int("retry_after", retryAfter))

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(delay).Unix(), 10))
				writeError(w, r, http.StatusTooManyRequests, ErrRateLimitExceeded,
					"Слишком много запросов. Попробуйте позже.",
					map[string]any{"retry_after": retryAfter})
				return
			}

			remaining := int(limiter.TokensAt(now))
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(cfg.Interval).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
