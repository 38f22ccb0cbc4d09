package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc       ports.WalletService
	TransferSvc     ports.TransferService
	DisbursementSvc ports.DisbursementService
	FundingSvc      ports.FundingService
	ReconcilerSvc   ports.ReconcilerService
	TokenSvc        ports.TokenService
	SignatureHeader string
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep: verifies PostgreSQL and Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Provider webhooks (signature-authenticated, no JWT) ---
	webhookHandler := NewWebhookHandler(deps.ReconcilerSvc, deps.SignatureHeader)
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/collection", webhookHandler.Collection)
		webhooks.POST("/disbursement", webhookHandler.Disbursement)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.WalletSvc, deps.FundingSvc)
	transferHandler := NewTransferHandler(deps.TransferSvc, deps.DisbursementSvc)

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.POST("", rl("wallets"), walletHandler.CreateWallet)
		wallets.GET("/me", rl("statements"), walletHandler.GetWallet)
		wallets.POST("/fund", rl("funding"), walletHandler.Fund)
	}

	transfers := v1.Group("/transfers", jwtAuth)
	{
		transfers.POST("", rl("transfers"), transferHandler.Transfer)
		transfers.POST("/bank", rl("disbursements"), transferHandler.BankTransfer)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("statements"), walletHandler.ListTransactions)
	}

	return r
}
