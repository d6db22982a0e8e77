package main

import (
	"context"
	"log"

	"hearth-chat-be/internal/bootstrap"
	"hearth-chat-be/internal/config"
	"hearth-chat-be/internal/model"
	"hearth-chat-be/internal/server"
	"hearth-chat-be/internal/tracer"
	"hearth-chat-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.Room{},
		&model.RoomParticipant{},
		&model.Message{},
		&model.UserSettings{},
	); err != nil {
		log.Panicf("Unable to migrate schema: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Room List Consumer...")
		if err := container.RoomListConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if container.AIFailureAuditService != nil {
		log.Println("Background: Starting AI Failure Audit Consumer...")
		if err := container.AIFailureAuditService.Start(); err != nil {
			log.Printf("AI Failure Audit Error: %v", err)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
