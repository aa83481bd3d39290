package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
	testhelpers "github.com/polkiloo/orderdesk/internal/test"
	"github.com/polkiloo/orderdesk/internal/worker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestRelay() *worker.OutboxRelay {
	return worker.NewOutboxRelay(&testhelpers.OutboxRepositoryStub{}, &testhelpers.PublisherStub{}, nil, worker.RelayOptions{PollInterval: 10 * time.Millisecond, BatchSize: 1, Workers: 1}, discardLogger())
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewOutboxRelayUsesConfig(t *testing.T) {
	relay := newOutboxRelay(relayParams{
		Outbox:    &testhelpers.OutboxRepositoryStub{},
		Publisher: &testhelpers.PublisherStub{},
		Config:    &config.Config{OutboxPollInterval: 15 * time.Second, OutboxBatchSize: 3, WorkerPoolSize: 4},
		Logger:    discardLogger(),
	})
	if relay == nil {
		t.Fatal("expected outbox relay instance")
	}
}

func TestNewAdminSeeder(t *testing.T) {
	facade := &OrderDeskFacade{}
	if seeder := newAdminSeeder(facade); seeder != AdminSeeder(facade) {
		t.Fatal("expected facade to act as admin seeder")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	seeder := &testhelpers.AdminSeederStub{}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond, BootstrapAdminLogin: "root", BootstrapAdminPassword: "secret"}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Server:     server,
		Relay:      newTestRelay(),
		Seeder:     seeder,
		Config:     cfg,
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	hook := recorder.Hooks[0]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := hook.OnStart(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	if len(seeder.Logins) != 1 || seeder.Logins[0] != "root" {
		t.Fatalf("expected bootstrap admin to be seeded, got %v", seeder.Logins)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hook.OnStop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
}

func TestRegisterLifecycleSeedFailure(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	seedErr := errors.New("db down")

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "127.0.0.1:0"},
		Relay:      newTestRelay(),
		Seeder:     &testhelpers.AdminSeederStub{Err: seedErr},
		Config:     &config.Config{BootstrapAdminLogin: "root"},
	})

	if err := recorder.Start(context.Background()); !errors.Is(err, seedErr) {
		t.Fatalf("expected seed error, got %v", err)
	}
}

func TestRegisterLifecycleSkipsSeedWithoutLogin(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	seeder := &testhelpers.AdminSeederStub{}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()},
		Relay:      newTestRelay(),
		Seeder:     seeder,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}
	if len(seeder.Logins) != 0 {
		t.Fatalf("did not expect seeding, got %v", seeder.Logins)
	}
	_ = recorder.Stop(context.Background())
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "bad addr"},
		Relay:      newTestRelay(),
		Seeder:     &testhelpers.AdminSeederStub{},
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = hook.OnStop(context.Background())
}

func TestLifecycleRecorderRunsHooksInOrder(t *testing.T) {
	var calls []string
	recorder := &testhelpers.LifecycleRecorder{}
	for _, name := range []string{"first", "second"} {
		name := name
		recorder.Append(fx.Hook{
			OnStart: func(context.Context) error {
				calls = append(calls, "start "+name)
				return nil
			},
			OnStop: func(context.Context) error {
				calls = append(calls, "stop "+name)
				return nil
			},
		})
	}
	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := recorder.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	want := []string{"start first", "start second", "stop second", "stop first"}
	if len(calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, calls)
		}
	}
}

func TestShutdownerStub(t *testing.T) {
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	_ = shutdowner.Shutdown()
	_ = shutdowner.Shutdown()
	select {
	case <-shutdowner.Called:
	default:
		t.Fatal("expected shutdown notification")
	}
	if shutdowner.Calls() != 2 {
		t.Fatalf("expected two shutdown calls, got %d", shutdowner.Calls())
	}
}
