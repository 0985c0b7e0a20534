package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"meal-ordering-be/internal/bootstrap"
	"meal-ordering-be/internal/config"
	"meal-ordering-be/internal/server"
	"meal-ordering-be/internal/tracer"
	"meal-ordering-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Otel)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	opts := database.DefaultOptions()
	opts.MaxOpenConns = cfg.Database.MaxOpenConns
	opts.MaxIdleConns = cfg.Database.MaxIdleConns
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, opts)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 5. Start Background Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start event consumer: %v", err)
	}

	// 6. Run Server until interrupted
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
