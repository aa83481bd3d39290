package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/adapter/fxrate"
	"github.com/polkiloo/orderdesk/internal/adapter/kafka"
	"github.com/polkiloo/orderdesk/internal/adapter/notify"
	"github.com/polkiloo/orderdesk/internal/app"
	"github.com/polkiloo/orderdesk/internal/config"
	"github.com/polkiloo/orderdesk/internal/logger"
	"github.com/polkiloo/orderdesk/internal/pkg/auth"
	"github.com/polkiloo/orderdesk/internal/server/http/handlers"
	"github.com/polkiloo/orderdesk/internal/server/http/router"
	"github.com/polkiloo/orderdesk/internal/storage/postgres"
	"github.com/polkiloo/orderdesk/internal/storage/redis"
	"github.com/polkiloo/orderdesk/internal/telemetry"
	"github.com/polkiloo/orderdesk/internal/usecase"
	"github.com/polkiloo/orderdesk/internal/worker"
)

// Module assembles the application graph. opts are appended last so callers can fx.Replace parts of it.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		telemetry.Module,
		auth.Module,
		postgres.Module,
		redis.Module,
		fxrate.Module,
		notify.Module,
		kafka.Module,
		usecase.Module,
		fx.Provide(
			func(s *redis.OTPStore) usecase.OTPStore { return s },
			func(m notify.Mailer) usecase.Mailer { return m },
			func(s *notify.LogSMSSender) usecase.SMSSender { return s },
			rateProvider,
			func(m *telemetry.Metrics) usecase.TransitionObserver { return m },
			func(m *telemetry.Metrics) worker.OutcomeObserver { return m },
			func(p *kafka.Publisher) worker.EventPublisher { return p },
			func(f *app.OrderDeskFacade) handlers.OrderDeskFacade { return f },
			func(s *postgres.Storage) router.HealthChecker { return s },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// rateProvider keeps the interface nil when no rate service is configured,
// so payments fall back to explicit conversion rates.
func rateProvider(c *fxrate.HTTPClient) usecase.RateProvider {
	if c == nil {
		return nil
	}
	return c
}
