package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/entity"
	"github.com/taskdeck/taskdeck/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := web.Run(ctx, cfg, entity.NewRegistry()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
