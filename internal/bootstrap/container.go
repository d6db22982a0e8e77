package bootstrap

import (
	"context"
	"log"

	"hearth-chat-be/internal/config"
	"hearth-chat-be/internal/controller"
	"hearth-chat-be/internal/handler"
	"hearth-chat-be/internal/pkg/logger"
	"hearth-chat-be/internal/repository/implementation"
	"hearth-chat-be/internal/repository/memory"
	"hearth-chat-be/internal/service"
	"hearth-chat-be/internal/websocket"
	"hearth-chat-be/pkg/llm/factory"

	pktNats "hearth-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Topic the room service and the lobby broadcaster meet on.
const roomListTopic = "room_list_events"

type Container struct {
	// Controllers
	RoomController     controller.IRoomController
	SettingsController controller.ISettingsController

	// Background Services (Exposed for main.go to run)
	RoomListConsumerService service.IRoomListConsumerService

	// Nil when NATS is not configured.
	AIFailureAuditService service.IAIFailureAuditService

	// WebSockets
	ChatHandler  *handler.ChatHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	messageRepo := implementation.NewMessageRepository(db)
	roomRepo := implementation.NewRoomRepository(db)
	settingsRepo := implementation.NewUserSettingsRepository(db)
	settingsCache := memory.NewSettingsCache()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	var natsPub *pktNats.Publisher
	var aiFailureAudit service.IAIFailureAuditService
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}

		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			aiFailureAudit = service.NewAIFailureAuditService(sub, sysLogger)
		}
	}

	// Redis (cross-instance hub relay, optional)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_ws.log")
	wsHub := websocket.NewHub(rdb, uuid.NewString(), wsLogger)
	go wsHub.Run()

	// LLM Provider Adapters
	providers := factory.New(factory.Config{
		GeminiAPIBase:   cfg.Ai.GeminiAPIBase,
		GeminiAPIKey:    cfg.Ai.GeminiAPIKey,
		GeminiModel:     cfg.Ai.GeminiModel,
		LilyAPIURL:      cfg.Ai.LilyAPIURL,
		GradioAPIURL:    cfg.Ai.GradioAPIURL,
		MediaBaseURL:    cfg.App.BaseURL,
		ProviderTimeout: cfg.Ai.ProviderTimeout,
		ImageTimeout:    cfg.Ai.ImageTimeout,
	})
	log.Printf("[INFO] Default AI provider: %s", cfg.Ai.DefaultProvider)

	// 3. Services
	publisherService := service.NewPublisherService(roomListTopic, pubSub)
	roomListConsumer := service.NewRoomListConsumerService(pubSub, roomListTopic, wsHub, wsLogger)

	settingsService := service.NewSettingsService(settingsRepo, settingsCache)
	roomService := service.NewRoomService(roomRepo, messageRepo, publisherService)
	chatService := service.NewChatService(
		messageRepo,
		roomRepo,
		settingsService,
		providers,
		wsHub,
		natsPub,
		sysLogger,
		cfg.Ai.DefaultProvider,
		cfg.Ai.ProviderTimeout,
	)

	// 4. Handlers & Controllers
	chatHandler := handler.NewChatHandler(chatService, wsHub, wsLogger)

	return &Container{
		ChatHandler:  chatHandler,
		WebSocketHub: wsHub,

		RoomController:     controller.NewRoomController(roomService),
		SettingsController: controller.NewSettingsController(settingsService),

		RoomListConsumerService: roomListConsumer,
		AIFailureAuditService:   aiFailureAudit,
	}
}
