package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
	"github.com/polkiloo/orderdesk/internal/pkg/auth"
)

// Module wires the Redis client and the OTP store.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(newOTPStore),
	fx.Invoke(registerLifecycle),
)

func newClient(cfg *config.Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

type otpParams struct {
	fx.In

	Client *goredis.Client
	Config *config.Config
}

func newOTPStore(p otpParams) *OTPStore {
	return NewOTPStore(p.Client, auth.NewCodeHasher(), p.Config.OTPTTL)
}

func registerLifecycle(lc fx.Lifecycle, client *goredis.Client, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unavailable, otp requests will fail until it recovers", slog.Any("error", err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
