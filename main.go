package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/barmor12/cakeshop-backend/controllers"
	"github.com/barmor12/cakeshop-backend/database"
	"github.com/barmor12/cakeshop-backend/logger"
	"github.com/barmor12/cakeshop-backend/middleware"
	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/notifications"
	awspkg "github.com/barmor12/cakeshop-backend/pkg/aws"
	"github.com/barmor12/cakeshop-backend/repository"
	"github.com/barmor12/cakeshop-backend/routes"
	"github.com/barmor12/cakeshop-backend/sender"
	"github.com/barmor12/cakeshop-backend/services"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// --- Logging (console, plus CloudWatch when enabled) ---
	cwLogs, err := awspkg.NewCloudWatchLogsClient(context.Background(), "cakeshop-backend")
	if err == nil && cwLogs.IsEnabled() {
		logger.InitializeWithWriter(cfg.Env, cwLogs)
	} else {
		logger.Initialize(cfg.Env)
	}
	zlog := logger.Log
	defer zlog.Sync()

	// --- Stores ---
	db, err := database.Connect(database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
		TimeZone: cfg.PostgresTimeZone,
	})
	if err != nil {
		zlog.Fatal("DB connection failed", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		zlog.Fatal("Migration failed", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zlog.Fatal("Redis connection failed", zap.Error(err))
	}

	// --- AWS setup ---
	awsCfg, err := awspkg.LoadAWSConfig(context.Background())
	if err != nil {
		zlog.Fatal("Failed to load AWS config", zap.Error(err))
	}
	snsClient := awspkg.NewSNSClient(awsCfg)

	queueURL, err := awspkg.GetQueueURL(context.Background(), awsCfg, cfg.NotificationQueueName)
	if err != nil {
		zlog.Fatal("Failed to resolve notification queue", zap.Error(err))
	}
	notificationQueue := awspkg.NewSQSQueue(awsCfg, queueURL)

	metricsClient, err := awspkg.NewMetricsClient(context.Background())
	if err != nil {
		zlog.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	// --- Outbound email ---
	emailSender, err := sender.NewSMTPSender(sender.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUsername,
		Password:   cfg.SMTPPassword,
		SenderName: cfg.SMTPSenderName,
	})
	if err != nil {
		zlog.Fatal("SMTP config invalid", zap.Error(err))
	}

	// --- Repositories ---
	userRepo := repository.NewGormUserRepository(db)
	refreshTokenRepo := repository.NewGormRefreshTokenRepository(db)
	cakeRepo := repository.NewGormCakeRepository(db)
	addressRepo := repository.NewGormAddressRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	discountRepo := repository.NewGormDiscountRepository(db)
	deviceTokenRepo := repository.NewGormDeviceTokenRepository(db)
	statsRepo := repository.NewGormStatsRepository(db)
	cartRepo := repository.NewRedisCartRepository(redisClient, 30*24*time.Hour)

	// --- Services ---
	tokenService, err := services.NewTokenService(cfg.JWTSecret)
	if err != nil {
		zlog.Fatal("Token service init failed", zap.Error(err))
	}
	notifier := notifications.NewQueueNotifier(notificationQueue, zlog)

	authService := services.NewAuthService(db, userRepo, refreshTokenRepo, tokenService, emailSender, zlog)
	cakeService := services.NewCakeService(cakeRepo, awsCfg, cfg.ImageBucket, zlog)
	cartService := services.NewCartService(cartRepo, cakeRepo, zlog)
	addressService := services.NewAddressService(addressRepo, zlog)
	orderService := services.NewOrderService(orderRepo, cakeRepo, userRepo, addressRepo, cartRepo, notifier, metricsClient, zlog)
	discountService := services.NewDiscountService(discountRepo, orderRepo, metricsClient, zlog)
	statsService := services.NewStatsService(statsRepo, zlog)
	pushService := services.NewPushService(deviceTokenRepo, notifier, zlog)

	// --- Notification dispatcher ---
	dispatcher := notifications.NewDispatcher(
		orderRepo, userRepo, deviceTokenRepo,
		emailSender, snsClient, cfg.PushSNSTopicARN,
		metricsClient, zlog,
	)
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	go func() {
		if err := notificationQueue.StartPolling(dispatcherCtx, dispatcher.HandleMessage); err != nil && dispatcherCtx.Err() == nil {
			zlog.Error("Notification dispatcher stopped", zap.Error(err))
		}
	}()

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	controllers.RegisterValidations()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(logger.RequestLogger())
	r.Use(middleware.MetricsMiddleware(metricsClient))
	r.Use(middleware.RateLimitMiddleware())

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.Register(r, routes.Controllers{
		Auth:     controllers.NewAuthController(authService),
		Cake:     controllers.NewCakeController(cakeService),
		Cart:     controllers.NewCartController(cartService),
		Order:    controllers.NewOrderController(orderService, discountService),
		Address:  controllers.NewAddressController(addressService),
		Discount: controllers.NewDiscountController(discountService),
		Stats:    controllers.NewStatsController(statsService),
		Push:     controllers.NewPushController(pushService),
	}, tokenService)

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		zlog.Info("CakeShop backend started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Initiating graceful shutdown...")
	stopDispatcher()

	httpShutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(httpShutdownCtx); err != nil {
		zlog.Error("Server shutdown error", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		zlog.Error("Redis close error", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		zlog.Error("Database close error", zap.Error(err))
	}

	log.Println("CakeShop backend stopped gracefully")
}

func corsOrigins() []string {
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		return origins
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}
