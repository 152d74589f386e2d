// internal/app/router.go
package app

import (
	authHandler "groupgate-service/internal/handlers/auth"
	customerHandler "groupgate-service/internal/handlers/customer"
	serviceHandler "groupgate-service/internal/handlers/service"
	subscriptionHandler "groupgate-service/internal/handlers/subscription"
	tokenHandler "groupgate-service/internal/handlers/token"
	wsHandler "groupgate-service/internal/handlers/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	CustomerHandler     *customerHandler.CustomerHandler
	ServiceHandler      *serviceHandler.ServiceHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	TokenHandler        *tokenHandler.TokenHandler
	WSHandler           *wsHandler.WebSocketHandler
	AuthMiddleware      gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.Events)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware)
	{
		authProtected.PUT("/change-password", h.AuthHandler.ChangePassword)
	}

	// ==================== Token Decoding (Public) ====================
	// Anyone holding the digits may inspect a token.
	tokensPublic := api.Group("/tokens")
	{
		tokensPublic.POST("/decode", h.TokenHandler.Decode)
		tokensPublic.POST("/status", h.TokenHandler.Status)
	}

	// ==================== Tokens ====================
	tokens := api.Group("/tokens")
	tokens.Use(h.AuthMiddleware)
	{
		tokens.POST("/quote", h.TokenHandler.Quote)
		tokens.POST("/purchase", h.TokenHandler.Purchase)
		tokens.GET("", h.TokenHandler.ListTokens)
		tokens.GET("/:id", h.TokenHandler.GetToken)
		tokens.PUT("/:id/revoke", h.TokenHandler.RevokeToken)
	}

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware)
	{
		customers.GET("", h.CustomerHandler.ListCustomers)
		customers.GET("/stats", h.CustomerHandler.GetCustomerStats)
		customers.GET("/remaining-time", h.CustomerHandler.GetRemainingTime)
		customers.GET("/:id", h.CustomerHandler.GetCustomer)

		customers.POST("", h.CustomerHandler.CreateCustomer)
		customers.PUT("/:id", h.CustomerHandler.UpdateCustomer)
		customers.DELETE("/:id", h.CustomerHandler.DeleteCustomer)
	}

	// ==================== Service Catalog ====================
	services := api.Group("/services")
	services.Use(h.AuthMiddleware)
	{
		services.GET("", h.ServiceHandler.ListServices)
		services.GET("/:id", h.ServiceHandler.GetService)

		services.POST("", h.ServiceHandler.CreateService)
		services.PUT("/:id", h.ServiceHandler.UpdateService)
		services.DELETE("/:id", h.ServiceHandler.DeleteService)
	}

	// ==================== Subscriptions ====================
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(h.AuthMiddleware)
	{
		subscriptions.GET("", h.SubscriptionHandler.ListSubscriptions)
		subscriptions.GET("/expiring", h.SubscriptionHandler.GetExpiringSubscriptions)
		subscriptions.GET("/customer-counts", h.SubscriptionHandler.GetCustomerCounts)
		subscriptions.GET("/stats/overview", h.SubscriptionHandler.GetSubscriptionStats)
		subscriptions.GET("/:id", h.SubscriptionHandler.GetSubscription)
		subscriptions.GET("/:id/capacity", h.SubscriptionHandler.GetCapacity)

		subscriptions.POST("", h.SubscriptionHandler.CreateSubscription)
		subscriptions.PUT("/:id", h.SubscriptionHandler.UpdateSubscription)
		subscriptions.DELETE("/:id", h.SubscriptionHandler.DeleteSubscription)
	}

	// ==================== WebSocket Stats ====================
	wsStats := api.Group("/ws")
	wsStats.Use(h.AuthMiddleware)
	{
		wsStats.GET("/stats", h.WSHandler.Stats)
	}
}
