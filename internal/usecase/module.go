package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newSettings,
	NewAuthUseCase,
	newOrderUseCase,
	newPaymentUseCase,
	NewNegotiationUseCase,
	NewProductUseCase,
	NewWalletUseCase,
)

func newSettings(cfg *config.Config) Settings {
	return Settings{
		PaymentMethods:      cfg.PaymentMethods,
		ConfirmationTTL:     cfg.ConfirmationTTL,
		ConfirmationBaseURL: cfg.ConfirmationBaseURL,
	}
}

type orderParams struct {
	fx.In

	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Accounts repository.AccountRepository
	OTP      OTPStore
	Mailer   Mailer
	SMS      SMSSender
	Observer TransitionObserver `optional:"true"`
	Settings Settings
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(OrderDeps{
		Orders:   p.Orders,
		Products: p.Products,
		Accounts: p.Accounts,
		OTP:      p.OTP,
		Mailer:   p.Mailer,
		SMS:      p.SMS,
		Observer: p.Observer,
		Settings: p.Settings,
	})
}

type paymentParams struct {
	fx.In

	Payments repository.PaymentRepository
	Orders   repository.OrderRepository
	Accounts repository.AccountRepository
	Rates    RateProvider `optional:"true"`
	OTP      OTPStore
	Mailer   Mailer
	SMS      SMSSender
	Observer TransitionObserver `optional:"true"`
	Settings Settings
}

func newPaymentUseCase(p paymentParams) *PaymentUseCase {
	return NewPaymentUseCase(PaymentDeps{
		Payments: p.Payments,
		Orders:   p.Orders,
		Accounts: p.Accounts,
		Rates:    p.Rates,
		OTP:      p.OTP,
		Mailer:   p.Mailer,
		SMS:      p.SMS,
		Observer: p.Observer,
		Settings: p.Settings,
	})
}
