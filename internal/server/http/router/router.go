package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/server/http/dto"
	"github.com/polkiloo/orderdesk/internal/server/http/handlers"
	"github.com/polkiloo/orderdesk/internal/server/http/middleware"
	"github.com/polkiloo/orderdesk/internal/telemetry"
)

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade  handlers.OrderDeskFacade
	Health  HealthChecker `optional:"true"`
	Metrics *telemetry.Metrics
	Config  *config.Config
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Tracing())
	engine.Use(middleware.Metrics(p.Metrics))
	engine.Use(cors.New(corsConfig(p.Config.CORSAllowedOrigins)))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))
	engine.GET("/health", health(p.Health))

	authHandler := handlers.NewAuthHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	paymentHandler := handlers.NewPaymentHandler(p.Facade)
	negotiationHandler := handlers.NewNegotiationHandler(p.Facade)
	productHandler := handlers.NewProductHandler(p.Facade)
	walletHandler := handlers.NewWalletHandler(p.Facade)

	api := engine.Group("/api")

	public := api.Group("/public")
	public.POST("/order/confirm-modification", orderHandler.ConfirmModification)
	public.POST("/negotiation/confirm-order", negotiationHandler.ConfirmOrder)

	customer := api.Group("/customer")
	customer.POST("/register", authHandler.RegisterCustomer)
	customer.POST("/login", authHandler.CustomerLogin)

	customerAuth := customer.Group("")
	customerAuth.Use(middleware.AuthRequired(p.Facade), middleware.RequireRole(model.RoleCustomer))
	customerAuth.POST("/order/create", orderHandler.Create)
	customerAuth.POST("/order/list", orderHandler.CustomerList)
	customerAuth.POST("/negotiation/open", negotiationHandler.Open)
	customerAuth.POST("/negotiation/respond", negotiationHandler.Respond)
	customerAuth.POST("/negotiation/list", negotiationHandler.List)

	admin := api.Group("/admin")
	admin.POST("/login", authHandler.AdminLogin)

	adminAuth := admin.Group("")
	adminAuth.Use(middleware.AuthRequired(p.Facade), middleware.RequireRole(model.RoleAdmin))
	adminAuth.POST("/accounts/create", authHandler.CreateAdmin)

	orders := adminAuth.Group("/order")
	orders.POST("/get", orderHandler.Get)
	orders.POST("/list", orderHandler.List)
	orders.POST("/get-stages", orderHandler.Stages)
	orders.POST("/payment-methods", orderHandler.PaymentMethods)
	orders.POST("/update-status", orderHandler.UpdateStatus)
	orders.POST("/update-quantities", orderHandler.UpdateQuantities)
	orders.POST("/send-confirmation", orderHandler.SendConfirmation)
	orders.POST("/update-receiver", orderHandler.UpdateReceiver)
	orders.POST("/cancel", orderHandler.Cancel)
	orders.POST("/send-delivery-otp", orderHandler.SendDeliveryOTP)
	orders.POST("/verify-delivery-otp", orderHandler.VerifyDeliveryOTP)

	payments := adminAuth.Group("/order-payment")
	payments.POST("/create", paymentHandler.Create)
	payments.POST("/update", paymentHandler.Update)
	payments.POST("/send-otp", paymentHandler.SendOTP)
	payments.POST("/verify-otp", paymentHandler.VerifyOTP)
	payments.POST("/verify", paymentHandler.Verify)
	payments.POST("/approve", paymentHandler.Approve)
	payments.POST("/reject", paymentHandler.Reject)
	payments.POST("/mark-paid", paymentHandler.MarkPaid)

	negotiations := adminAuth.Group("/negotiation")
	negotiations.POST("/list", negotiationHandler.List)
	negotiations.POST("/respond", negotiationHandler.Respond)
	negotiations.POST("/place-order", negotiationHandler.PlaceOrder)

	products := adminAuth.Group("/product")
	products.POST("/create", productHandler.Create)
	products.POST("/update", productHandler.Update)

	versions := adminAuth.Group("/version/product")
	versions.POST("/history", productHandler.History)
	versions.POST("/get", productHandler.Version)
	versions.POST("/restore", productHandler.Restore)

	wallet := adminAuth.Group("/wallet")
	wallet.POST("/summary", walletHandler.Summary)
	wallet.POST("/credit", walletHandler.Credit)
	wallet.POST("/debit", walletHandler.Debit)
	wallet.POST("/ledger", walletHandler.Ledger)

	return engine
}

// corsConfig allows the configured origins; "*" allows any origin.
func corsConfig(origins []string) cors.Config {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	_, anyOrigin := allowed["*"]
	return cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Content-Encoding", "traceparent"},
		ExposeHeaders:    []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
		AllowOriginFunc: func(origin string) bool {
			if anyOrigin {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

func health(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil {
			if err := checker.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, dto.Envelope{Status: http.StatusServiceUnavailable, Message: "storage unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, dto.Envelope{Status: http.StatusOK, Message: "ok"})
	}
}
