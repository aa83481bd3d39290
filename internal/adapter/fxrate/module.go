package fxrate

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
)

// Module exposes the rate client to fx graph. Without FX_RATES_ADDRESS no client is built
// and payments in a foreign currency must carry an explicit conversion rate.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*HTTPClient, error) {
	if p.Config.FXRatesAddress == "" {
		p.Logger.Info("fx rate service not configured")
		return nil, nil
	}
	return NewHTTPClient(p.Config.FXRatesAddress, p.Logger)
}
