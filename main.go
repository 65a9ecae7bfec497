package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"GoTelegramAI/app/clients"
	"GoTelegramAI/app/configs"
	"GoTelegramAI/app/runtime"
)

func main() {
	logs := runtime.NewLogBuffer(500)
	log.SetOutput(io.MultiWriter(os.Stderr, logs))
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("❌ Error loading config: %v", err)
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Invalid log level: %v", err)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cfg.Build(ctx, logs)
	if err != nil {
		log.Fatalf("❌ Error building bot: %v", err)
	}
	defer app.Close()

	if err = app.InitializeClients(clients.NewRegistry()); err != nil {
		log.Errorf("❌ Error initializing clients: %v", err)
		return
	}

	app.Runtime.Start(ctx)
	log.Info("👋 Shutting down")
}
