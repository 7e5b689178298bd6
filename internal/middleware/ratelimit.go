package middleware

import (
	"fmt"
	"net/http"

	"github.com/GunarsK-portfolio/todo-service/internal/httputil"
	"github.com/GunarsK-portfolio/todo-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "todosvc:ratelimit"

// RateLimitConfig configures the per-client-IP limiter.
type RateLimitConfig struct {
	// Rate in ulule format, e.g. "20-M" for 20 requests per minute.
	Rate string
	// Redis shares counters between instances when set; otherwise counters
	// are kept in process memory.
	Redis *redis.Client
}

// RateLimit limits requests per client IP. Exceeding the limit answers 429.
func RateLimit(cfg RateLimitConfig) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", cfg.Rate, err)
	}

	var store limiter.Store
	if cfg.Redis != nil {
		store, err = sredis.NewStoreWithOptions(cfg.Redis, limiter.StoreOptions{
			Prefix:   rateLimitPrefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}

	return mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			httputil.RespondError(c, http.StatusTooManyRequests, "too many requests")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// fail open on store errors
			logger.FromContext(c.Request.Context()).WithError(err).Warn("rate limiter unavailable")
			c.Next()
		}),
	), nil
}
