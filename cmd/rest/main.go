package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"deepresearch-be/internal/bootstrap"
	"deepresearch-be/internal/config"
	"deepresearch-be/internal/server"
	"deepresearch-be/pkg/database"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("unable to connect to database: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down: draining in-flight requests and open streams")
	if err := srv.Shutdown(); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	if err := container.Bus.Close(); err != nil {
		log.Printf("error closing event bus: %v", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("error closing database pool: %v", err)
		}
	}
	_ = container.Log.Sync()
}
