package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
	"github.com/polkiloo/orderdesk/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewOrderDeskFacade,
		newHTTPServer,
		newOutboxRelay,
		newAdminSeeder,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type relayParams struct {
	fx.In

	Outbox    repository.OutboxRepository
	Publisher worker.EventPublisher
	Observer  worker.OutcomeObserver `optional:"true"`
	Config    *config.Config
	Logger    *slog.Logger
}

func newOutboxRelay(p relayParams) *worker.OutboxRelay {
	return worker.NewOutboxRelay(
		p.Outbox,
		p.Publisher,
		p.Observer,
		worker.RelayOptions{
			PollInterval: p.Config.OutboxPollInterval,
			BatchSize:    p.Config.OutboxBatchSize,
			Workers:      p.Config.WorkerPoolSize,
		},
		p.Logger,
	)
}

// AdminSeeder creates the bootstrap admin account on start.
type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, login, password string) error
}

func newAdminSeeder(f *OrderDeskFacade) AdminSeeder {
	return f
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Relay      *worker.OutboxRelay
	Seeder     AdminSeeder
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Config.BootstrapAdminLogin != "" {
				if err := p.Seeder.EnsureAdmin(ctx, p.Config.BootstrapAdminLogin, p.Config.BootstrapAdminPassword); err != nil {
					return err
				}
			}

			p.Logger.Info("starting orderdesk", slog.String("addr", p.Server.Addr))
			p.Relay.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Relay.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("orderdesk stopped")
			return nil
		},
	})
}
