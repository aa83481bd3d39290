package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Accounts() AccountRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Negotiations() NegotiationRepository
	Products() ProductRepository
	Wallets() WalletRepository
	Outbox() OutboxRepository
}
