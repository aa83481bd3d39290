package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
)

// Module provides the event publisher and closes it on shutdown.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Invoke(registerLifecycle),
)

func newPublisher(cfg *config.Config) *Publisher {
	return NewPublisher(cfg.KafkaBrokers, cfg.EventsTopic)
}

func registerLifecycle(lc fx.Lifecycle, publisher *Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
}
