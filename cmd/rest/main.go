package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-studygen-be/internal/bootstrap"
	"ai-studygen-be/internal/config"
	"ai-studygen-be/internal/server"
	"ai-studygen-be/internal/tracer"
	"ai-studygen-be/pkg/database"

	"golang.org/x/sync/errgroup"
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

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Supervise Server and Worker together
	g, gctx := errgroup.WithContext(ctx)

	srv := server.New(cfg, container)

	g.Go(func() error {
		log.Println("Background: Starting Generation Worker...")
		return container.WorkerService.Consume(gctx)
	})

	g.Go(func() error {
		return srv.Run()
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("Exited with error: %v", err)
	}
}
