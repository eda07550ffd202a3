package ratelimit

import (
	"fmt"
	"strings"

	"codeberg.org/tubetrack/server/internal/errors"
	"codeberg.org/tubetrack/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	DefaultRate = "120-M"
	keyPrefix   = "tubetrack:ratelimit"
)

// paths that are never limited
var exemptPrefixes = []string{"/health", "/api/v1/ping", "/api/v1/events"}

// creates a per-IP request limiter. with a redis client the counters are
// shared between instances, otherwise they live in process memory.
func New(formatted string, client *redis.Client) (gin.HandlerFunc, error) {
	if formatted == "" {
		formatted = DefaultRate
	}

	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	var store limiter.Store

	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   keyPrefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix: keyPrefix,
		})
	}

	instance := limiter.New(store, rate)

	middleware := mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.Warn("rate limit reached", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			errors.TooManyRequests(c, "rate limit exceeded, slow down")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// fail open
			logger.ErrorErr(err, "rate limiter failed", "path", c.Request.URL.Path)
			c.Next()
		}),
	)

	return func(c *gin.Context) {
		if isExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		middleware(c)
	}, nil
}

func isExempt(path string) bool {
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
