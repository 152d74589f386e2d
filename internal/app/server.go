// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"groupgate-service/internal/allocation"
	"groupgate-service/internal/config"
	"groupgate-service/internal/db"
	authHandler "groupgate-service/internal/handlers/auth"
	customerHandler "groupgate-service/internal/handlers/customer"
	serviceHandler "groupgate-service/internal/handlers/service"
	subscriptionHandler "groupgate-service/internal/handlers/subscription"
	tokenHandler "groupgate-service/internal/handlers/token"
	wsHandler "groupgate-service/internal/handlers/websocket"
	"groupgate-service/internal/middleware"
	"groupgate-service/internal/pkg/lock"
	"groupgate-service/internal/pricing"
	"groupgate-service/internal/repository/postgres"
	authUsecase "groupgate-service/internal/service/auth"
	catalogUsecase "groupgate-service/internal/service/catalog"
	customerUsecase "groupgate-service/internal/service/customer"
	subscriptionUsecase "groupgate-service/internal/service/subscription"
	tokenUsecase "groupgate-service/internal/service/token"
	"groupgate-service/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisCfg := db.RedisConfig{
		ClusterMode: false,
		Addresses:   []string{s.cfg.RedisAddr},
		Password:    s.cfg.RedisPass,
		DB:          0,
		PoolSize:    10,
	}

	redisClient, err := db.NewRedisClient(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	if s.cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)

	// ----- WebSocket Hub -----
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	// ----- Allocation Lock -----
	locker := lock.NewLocker(redisClient)

	// ----- Services -----
	authService := authUsecase.NewAuthService(adminRepo, s.cfg.JWTSecret, s.cfg.JWTTTL, logger)
	customerService := customerUsecase.NewCustomerService(customerRepo, logger)
	catalogService := catalogUsecase.NewCatalogService(serviceRepo, logger)
	subscriptionService := subscriptionUsecase.NewSubscriptionService(subscriptionRepo, serviceRepo, logger)
	tokenService := tokenUsecase.NewTokenService(
		tokenRepo,
		subscriptionRepo,
		customerRepo,
		serviceRepo,
		dbWrapper,
		locker,
		hub,
		redisClient,
		tokenUsecase.Policy{
			ExchangeRate: s.cfg.ExchangeRate,
			Discount: pricing.DiscountPolicy{
				PerCustomer: s.cfg.DiscountPerCustomer,
				Cap:         s.cfg.DiscountCap,
			},
			Engine:           allocation.NewEngine(s.cfg.MinimumPayment),
			WarningThreshold: s.cfg.WarningThreshold,
		},
		logger,
	)

	// ----- Bootstrap Admin -----
	if err := s.bootstrapAdmin(authService); err != nil {
		logger.Error("failed to bootstrap admin", zap.Error(err))
		// Don't fail startup, just log the error
	}

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService)
	customerHandlerInst := customerHandler.NewCustomerHandler(customerService)
	serviceHandlerInst := serviceHandler.NewServiceHandler(catalogService)
	subscriptionHandlerInst := subscriptionHandler.NewSubscriptionHandler(subscriptionService)
	tokenHandlerInst := tokenHandler.NewTokenHandler(tokenService)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigin),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:         authHandlerInst,
		CustomerHandler:     customerHandlerInst,
		ServiceHandler:      serviceHandlerInst,
		SubscriptionHandler: subscriptionHandlerInst,
		TokenHandler:        tokenHandlerInst,
		WSHandler:           wsHandlerInst,
		AuthMiddleware:      middleware.AuthMiddleware(authService),
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// bootstrapAdmin creates the first admin account from configuration when no
// account with that email exists yet.
func (s *Server) bootstrapAdmin(authService *authUsecase.AuthService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		s.logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}
	if len(s.cfg.AdminPassword) < 8 {
		return fmt.Errorf("admin password must be at least 8 characters")
	}

	return authService.EnsureAdminExists(ctx, s.cfg.AdminEmail, s.cfg.AdminName, s.cfg.AdminPassword)
}
