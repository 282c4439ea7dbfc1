package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/handler"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/mailer"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/service"
	"ai-chat-be/internal/websocket"
	"ai-chat-be/pkg/llm/factory"

	pktNats "ai-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	TenantController controller.ITenantController
	ChatController   controller.IChatController

	// Background Services (Exposed for main.go to run)
	ProvisionService    service.IProvisionService
	NotificationService *service.NotificationService

	// WebSockets
	WsHandler    *handler.WsHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Job Queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// LLM Provider for the message improvement endpoint
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-memory stores
	trackerRepo := memory.NewTrackerRepository()
	processingRepo := memory.NewProcessingRepository()

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	provisionService := service.NewProvisionService(
		pubSub,
		cfg.Provision.TopicName,
		uowFactory,
		db,
		cfg.Provision.StorageRoot,
		natsPub,
	)

	authService := service.NewAuthService(
		uowFactory,
		emailService,
		pubSub,
		cfg.Provision.TopicName,
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
	)

	tenantService := service.NewTenantService(uowFactory, trackerRepo, provisionService, wsHub, sysLogger)

	chatService := service.NewChatService(
		uowFactory,
		trackerRepo,
		processingRepo,
		wsHub,
		llmProvider,
		sysLogger,
		time.Duration(cfg.Provision.TypingStepMs)*time.Millisecond,
		time.Duration(cfg.Provision.ReplyDelayMinMs)*time.Millisecond,
		time.Duration(cfg.Provision.ReplyDelayMaxMs)*time.Millisecond,
	)

	notificationService := service.NewNotificationService(natsSub, wsHub, wsLogger)

	return &Container{
		AuthController:      controller.NewAuthController(authService),
		TenantController:    controller.NewTenantController(tenantService),
		ChatController:      controller.NewChatController(chatService),
		ProvisionService:    provisionService,
		NotificationService: notificationService,
		WsHandler:           handler.NewWsHandler(wsHub, wsLogger),
		WebSocketHub:        wsHub,
	}
}
