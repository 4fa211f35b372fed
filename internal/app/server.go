// internal/app/server.go
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/config"
	"github.com/jejak-awan/ja-kdua-sub010/internal/db"
	customerHandler "github.com/jejak-awan/ja-kdua-sub010/internal/handlers/customer"
	diagnosticHandler "github.com/jejak-awan/ja-kdua-sub010/internal/handlers/diagnostic"
	ippoolHandler "github.com/jejak-awan/ja-kdua-sub010/internal/handlers/ippool"
	"github.com/jejak-awan/ja-kdua-sub010/internal/middleware"
	"github.com/jejak-awan/ja-kdua-sub010/internal/pkg/jwt"
	"github.com/jejak-awan/ja-kdua-sub010/internal/repository/postgres"
	"github.com/jejak-awan/ja-kdua-sub010/internal/routeros"
	customersvc "github.com/jejak-awan/ja-kdua-sub010/internal/service/customer"
	diagnosticsvc "github.com/jejak-awan/ja-kdua-sub010/internal/service/diagnostic"
	ippoolsvc "github.com/jejak-awan/ja-kdua-sub010/internal/service/ippool"
	oltsvc "github.com/jejak-awan/ja-kdua-sub010/internal/service/olt"
	radiussvc "github.com/jejak-awan/ja-kdua-sub010/internal/service/radius"
	reconcilersvc "github.com/jejak-awan/ja-kdua-sub010/internal/service/reconciler"

	nasdomain "github.com/jejak-awan/ja-kdua-sub010/internal/domain/nas"
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
	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(s.cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- JWT Verifier -----
	verifier, err := jwt.Load(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Repositories -----
	customerRepo := postgres.NewCustomerRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	nasRepo := postgres.NewNasRepository(pool)
	oltRepo := postgres.NewOltRepository(pool)
	ippoolRepo := postgres.NewIPPoolRepository(pool)
	radiusRepo := postgres.NewRadiusRepository(pool)

	// ----- Services -----
	coaClient := radiussvc.NewCoAClient(s.cfg.CoATimeout, s.cfg.CoARetries)
	radiusService := radiussvc.NewService(radiusRepo, nasRepo, coaClient, logger)
	poolService := ippoolsvc.NewService(ippoolRepo, logger)
	reconciler := reconcilersvc.NewService(poolService, radiusService, planRepo, radiusService, logger)
	customerService := customersvc.NewCustomerService(customerRepo, reconciler, logger)
	oltService := oltsvc.NewService(oltRepo, customerRepo, s.cfg.OLTCommandTimeout, logger)

	diagLimiter := diagnosticsvc.NewLimiter(redisClient, 3, time.Minute)
	diagCache := diagnosticsvc.NewReportCache(redisClient, 15*time.Minute)
	clientFactory := func(router *nasdomain.Nas) diagnosticsvc.RouterClient {
		return routeros.NewClient(router, s.cfg.ProbeTimeout)
	}
	diagnosticService := diagnosticsvc.NewService(
		nasRepo,
		oltService,
		clientFactory,
		diagLimiter,
		diagCache,
		s.cfg.SignalFloorDBm,
		s.cfg.ProbeTarget,
		logger,
	)

	// ----- Handlers -----
	customerHandlerInst := customerHandler.NewCustomerHandler(customerService, oltService)
	diagnosticHandlerInst := diagnosticHandler.NewDiagnosticHandler(customerService, diagnosticService, logger)
	ippoolHandlerInst := ippoolHandler.NewIPPoolHandler(poolService)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	// ----- Router -----
	handlers := &Handlers{
		CustomerHandler:   customerHandlerInst,
		DiagnosticHandler: diagnosticHandlerInst,
		IPPoolHandler:     ippoolHandlerInst,
		AuthMiddleware:    authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
