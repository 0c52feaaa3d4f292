package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/brightkatongo/learn-hub/internal/config"
	"github.com/brightkatongo/learn-hub/internal/handlers"
	"github.com/brightkatongo/learn-hub/internal/middleware"
)

// HandlerDependencies bundles the handlers wired in main.
type HandlerDependencies struct {
	AuthHandler    *handlers.AuthHandler
	PaymentHandler *handlers.PaymentHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}

		payments := public.Group("/payments")
		{
			payments.GET("/providers", deps.PaymentHandler.GetProviders)
			payments.POST("/validate-phone", deps.PaymentHandler.ValidatePhone)
			payments.POST("/webhook/sms", deps.PaymentHandler.InboundSMSWebhook)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		payments := protected.Group("/payments")
		{
			payments.POST("/initiate", deps.PaymentHandler.InitiatePayment)
			payments.GET("/status/:reference_code", deps.PaymentHandler.GetTransactionStatus)
			payments.POST("/cancel/:reference_code", deps.PaymentHandler.CancelPayment)
			payments.GET("/instructions/:reference_code", deps.PaymentHandler.GetPaymentInstructions)
			payments.GET("/transactions", deps.PaymentHandler.GetUserTransactions)
			payments.GET("/transactions/:reference_code", deps.PaymentHandler.GetTransaction)
		}
	}

	// Admin routes
	admin := router.Group("/api/v1")
	admin.Use(middleware.JWTAuthMiddleware(cfg), middleware.AdminOnly())
	{
		payments := admin.Group("/payments")
		{
			payments.POST("/confirm/:reference_code", deps.PaymentHandler.ConfirmPayment)
			payments.POST("/remind/:reference_code", deps.PaymentHandler.SendReminder)
			payments.POST("/expire", deps.PaymentHandler.ExpirePending)
		}
	}

	return router
}
