package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-intro-be/internal/bootstrap"
	"portfolio-intro-be/internal/config"
	"portfolio-intro-be/internal/server"
	"portfolio-intro-be/internal/tracer"
	"portfolio-intro-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED)
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
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server, shut down cleanly on SIGINT/SIGTERM: stop accepting
	// requests, close the commit pipeline (drains in-flight handlers), then
	// wait for background cache writes.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server stopped: %v", err)
	case sig := <-quit:
		log.Printf("Received %s, shutting down...", sig)
	}

	if err := srv.GetApp().Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if err := container.PubSub.Close(); err != nil {
		log.Printf("PubSub close error: %v", err)
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := container.Registry.Wait(drainCtx); err != nil {
		log.Printf("Background tasks did not drain: %v", err)
	}

	container.Logger.Sync()
	log.Println("Shutdown complete")
}
