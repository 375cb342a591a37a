package infrastructure

import (
	"context"
	"time"

	"Caixinha/config"
	"Caixinha/internal/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient devolve nil quando o Redis está desabilitado; nesse caso o
// rate limit fica em memória.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		logger.Info().Msg("Redis desabilitado, rate limit em memória")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().
			Err(err).
			Str("addr", cfg.Redis.Addr).
			Msg("Falha ao conectar ao Redis")
		_ = client.Close()
		return nil, err
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Conexão com Redis estabelecida com sucesso")
	return client, nil
}
