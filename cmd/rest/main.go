package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tigaraksa-chat-be/internal/bootstrap"
	"tigaraksa-chat-be/internal/config"
	"tigaraksa-chat-be/internal/server"
	"tigaraksa-chat-be/internal/tracer"
	"tigaraksa-chat-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.App)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.Ping(gormDB); err != nil {
		log.Printf("[WARN] Database not reachable yet: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	// Subscribe before anything is enqueued; gochannel drops messages with no subscriber.
	log.Println("Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(rootCtx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	if cfg.Rag.IndexOnStartup {
		go func() {
			queued, err := container.ImageService.EnqueueMissingEmbeddings(rootCtx)
			if err != nil {
				log.Printf("Background: failed to queue missing embeddings: %v", err)
				return
			}
			log.Printf("Background: queued %d images for embedding", queued)
		}()
	}

	// 6. Run Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
