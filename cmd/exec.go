package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/sirupsen/logrus"

	"codepair-system/config"
	"codepair-system/handlers"
	"codepair-system/monitoring"
	"codepair-system/security"
	"codepair-system/services"
	"codepair-system/store"
	"codepair-system/utils"
)

func Start() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores
	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	mongoClient, db, err := utils.NewMongoDatabase(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logrus.WithError(err).Warn("mongodb disconnect failed")
		}
	}()

	queueStore := store.NewRedisQueueStore(redisClient)
	roomStore := store.NewMongoRoomStore(db)
	domainStore := store.NewMongoDomainStore(db)
	userStore := store.NewMongoUserStore(db)

	if err := roomStore.EnsureIndexes(ctx); err != nil {
		return err
	}

	// Notifications
	var notifier services.RoomNotifier = services.NopNotifier{}
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		notifier = services.NewPubNubNotifier(pubnub.NewPubNub(pnConfig))
	}

	// Services
	queueService := services.NewQueueService(queueStore, notifier, cfg)
	matchmaker := services.NewMatchmaker(queueStore, roomStore, notifier, cfg)
	roomService := services.NewRoomService(roomStore)
	authService := services.NewAuthService(userStore, cfg)

	// Background loops. The matchmaker must stay a singleton per Redis
	// database; run one replica of this process.
	go matchmaker.Run(ctx)
	go queueService.UpdatePositions(ctx)
	go monitoring.NewMonitor(queueStore, cfg.MetricsInterval).Run(ctx)

	if cfg.EnableMetrics {
		go serveMetrics(cfg.MetricsPort)
	}

	// HTTP surface
	queueHandler := handlers.NewQueueHandler(queueService)
	roomHandler := handlers.NewRoomHandler(roomService)
	domainHandler := handlers.NewDomainHandler(domainStore)
	authHandler := handlers.NewAuthHandler(authService)
	rateLimiter := security.NewRateLimiter(redisClient, cfg.QueueRateLimit)

	e := echo.New()

	e.POST("/api/v1/auth/github", authHandler.GitHubLogin)

	queueGroup := e.Group("/api/v1/queue",
		security.JWTAuth(authService),
		rateLimiter.AntiBotMiddleware(),
		rateLimiter.QueueRateLimit(),
	)
	queueGroup.POST("/enqueue", queueHandler.Enqueue)
	queueGroup.GET("/length", queueHandler.Length)
	queueGroup.GET("/position", queueHandler.Position)
	queueGroup.POST("/leave", queueHandler.Leave)

	roomGroup := e.Group("/api/v1/rooms", security.JWTAuth(authService))
	roomGroup.GET("/current", roomHandler.CurrentRoom)
	roomGroup.POST("/leave", roomHandler.Leave)
	roomGroup.POST("/complete", roomHandler.Complete)

	e.POST("/api/v1/domains", domainHandler.CreateDomain)
	e.GET("/api/v1/domains", domainHandler.ListDomains)
	e.POST("/api/v1/room-types", domainHandler.CreateRoomType)
	e.GET("/api/v1/room-types", domainHandler.ListRoomTypes)

	e.GET("/health", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		if err := utils.MongoHealthCheck(mongoClient); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go handleShutdown(cancel, srv)

	logrus.WithField("port", cfg.Port).Info("server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logrus.WithField("port", port).Info("metrics server started")
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logrus.WithError(err).Error("metrics server failed")
	}
}

func handleShutdown(cancel context.CancelFunc, srv *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
	}
}
