package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/notifications"
	"messaging-service/internal/observability"
	"messaging-service/internal/quota"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

const serviceName = "messaging-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, serviceName, cfg.Environment, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	var quotaClient redis.Cmdable
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, quota falls back to sql counts: %v", err)
	} else {
		quotaClient = redisClient
		defer redisClient.Close()
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	if mode := rabbitmq.PublisherMode(publisher); mode == "noop" {
		log.Printf("event publisher mode=%s reason=%q", mode, rabbitmq.PublisherNoopReason(publisher))
	} else {
		log.Printf("event publisher mode=%s", mode)
	}

	if amqpPublisher, err := observability.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange); err == nil {
		observability.SetPublisher(amqpPublisher)
		defer amqpPublisher.Close()
	} else {
		log.Printf("ws event publishing disabled: %v", err)
	}

	messageRepo := repositories.NewMessageRepo(database)
	listingRepo := repositories.NewListingRepo(database)
	blockRepo := repositories.NewBlockRepo(database)
	reportRepo := repositories.NewReportRepo(database)

	oracle := quota.NewRedisOracle(quotaClient, messageRepo, cfg.Limits.DailyMessageLimit)

	dispatcher := notifications.NewDispatcher(publisher, cfg.Notifications.QueueSize)
	defer dispatcher.Close()

	hub := ws.NewHub()

	messageHandler := handlers.NewMessageHandler(messageRepo, listingRepo, blockRepo, oracle, dispatcher, hub)
	blockHandler := handlers.NewBlockHandler(blockRepo)
	reportHandler := handlers.NewReportHandler(reportRepo)
	inboxWS := ws.NewInboxWebSocketHandler(hub, cfg.Auth.JWTSecret)

	emitter := telemetry.NewAuditEmitter(publisher, "audit.messaging", serviceName, cfg.Environment)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSecret)

	router.POST("/listings/:listing_id/messages", authMiddleware, messageHandler.SendMessage)
	router.GET("/listings/:listing_id/guard", authMiddleware, messageHandler.GuardState)
	router.GET("/inbox", authMiddleware, messageHandler.ListInbox)
	router.GET("/inbox/unread-count", authMiddleware, messageHandler.UnreadCount)
	router.POST("/messages/:message_id/read", authMiddleware, messageHandler.MarkRead)

	router.GET("/blocks/:user_id/status", authMiddleware, blockHandler.Status)
	router.POST("/blocks", authMiddleware, blockHandler.Create)
	router.DELETE("/blocks/:user_id", authMiddleware, blockHandler.Remove)

	router.POST("/reports", authMiddleware, reportHandler.Create)

	router.GET("/ws/inbox", inboxWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, emitter, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
