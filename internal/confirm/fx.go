package confirm

import (
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/opencampus/paygate/internal/clock"
	"github.com/opencampus/paygate/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provide(cfg config.Config, clk clock.Clock, log *zap.Logger) Store {
	ttl := time.Duration(cfg.ConfirmTokenTTL) * time.Second

	if cfg.RedisAddr == "" {
		log.Warn("redis not configured, confirmation tokens are per-instance")
		return NewMemoryStore(clk, ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return NewRedisStore(client, ttl)
}

var Module = fx.Module("confirm.store",
	fx.Provide(provide),
)
