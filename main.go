package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bidding-service/auth"
	"bidding-service/controllers"
	"bidding-service/database"
	"bidding-service/logger"
	"bidding-service/middleware"
	aws_pkg "bidding-service/pkg/aws"
	"bidding-service/repository"
	"bidding-service/routes"
	servicepkg "bidding-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	db, err := database.ConnectPostgres(cfg.Postgres, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zl.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close() //nolint:errcheck

	// AWS clients. Without AWS config events are skipped and OTPs are logged.
	var (
		snsPublisher aws_pkg.SNSPublisher
		smsSender    aws_pkg.SMSSender
		metrics      aws_pkg.MetricsRecorder
	)
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)
	if awsErr != nil {
		zl.Warn("AWS config unavailable, SNS and CloudWatch disabled", zap.Error(awsErr))
	} else {
		snsClient := aws_pkg.NewSNSClient(awsCfg, cfg.SMSSenderID)
		snsPublisher = snsClient
		if cfg.SMSEnabled {
			smsSender = snsClient
		}
		metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace, cfg.CloudWatchEnabled)
	}

	// DI chain
	store := repository.NewGormStore(db)
	settings := cfg.Settings()
	events := servicepkg.NewEventPublisher(snsPublisher, cfg.BiddingSNSTopicARN, zl)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	orderService := servicepkg.NewOrderService(store, events, metrics, settings, zl)
	sessionService := servicepkg.NewSessionService(store, events, metrics, settings, zl)
	bidService := servicepkg.NewBidService(store, events, metrics, settings, zl)
	queryService := servicepkg.NewQueryService(store, settings, zl)
	acceptanceService := servicepkg.NewAcceptanceService(store, events, metrics, zl)
	partnerService := servicepkg.NewPartnerService(store, zl)
	otpService := servicepkg.NewOTPService(repository.NewRedisOTPStore(redisClient), store, smsSender, tokens, cfg.OTPTTL, metrics, zl)

	bidLimiter := middleware.NewRateLimiter(rate.Every(time.Minute/time.Duration(cfg.BidRatePerMin)), cfg.BidRateBurst, 5*time.Minute)
	go bidLimiter.Run(ctx)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(zl))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Metrics(metrics, "bidding-service"))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	routes.Register(r, routes.Controllers{
		Orders:   controllers.NewOrderController(orderService, bidService),
		Auctions: controllers.NewAuctionController(sessionService, bidService, queryService),
		Bids:     controllers.NewBidController(bidService, acceptanceService, queryService),
		Partners: controllers.NewPartnerController(partnerService),
		Mobile:   controllers.NewMobileController(otpService, bidService, queryService, partnerService),
	}, tokens, middleware.RateLimit(bidLimiter, metrics))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	zl.Info("Bidding service started", zap.String("port", cfg.Port))
	<-ctx.Done()
	zl.Info("Shutting down bidding service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	zl.Info("Server exited cleanly")
}
