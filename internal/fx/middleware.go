package fx

import (
	"context"

	"Caixinha/config"
	"Caixinha/internal/logger"
	"Caixinha/internal/middleware"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var MiddlewareModule = fx.Module("middleware",
	fx.Provide(
		newJwtService,
		newRateLimiter,
	),
)

func newJwtService(cfg *config.Config) (*middleware.JwtService, error) {
	return middleware.NewJwtService(cfg.JWT)
}

// newRateLimiter usa o Redis quando disponível para que o limite valha entre
// réplicas; sem ele cada processo conta sozinho.
func newRateLimiter(lc fx.Lifecycle, cfg *config.Config, client *redis.Client) middleware.Limiter {
	if client != nil {
		logger.Info().
			Int("requests", cfg.RateLimit.Requests).
			Dur("window", cfg.RateLimit.Window).
			Msg("Rate limit distribuído via Redis")
		return middleware.NewRedisRateLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			limiter.Stop()
			return nil
		},
	})
	return limiter
}
