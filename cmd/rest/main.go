package main

import (
	"context"
	"log"

	"ai-chat-be/internal/bootstrap"
	"ai-chat-be/internal/config"
	"ai-chat-be/internal/server"
	"ai-chat-be/internal/tracer"
	"ai-chat-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (enabled via OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Provision Consumer...")
		if err := container.ProvisionService.Consume(context.Background()); err != nil {
			log.Printf("Background Provision Consumer Error: %v", err)
		}
	}()
	go container.NotificationService.Start()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
