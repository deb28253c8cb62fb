package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/server"
)

func main() {
	cfg := config.LoadOrDefault()

	// Flags override environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	host := flag.String("host", cfg.Server.Host, "Listen host")
	origin := flag.String("origin", cfg.Shell.Origin, "Trusted editor shell origin")
	source := flag.String("source", cfg.Preview.Source, "Preview page file or URL")
	layout := flag.String("layout", cfg.Preview.Layout, "YAML element layout")
	console := flag.Bool("capture-console", cfg.Shell.CaptureConsole, "Forward page errors to the shell")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Server.Host = *host
	cfg.Shell.Origin = *origin
	cfg.Shell.CaptureConsole = *console
	cfg.Preview.Source = *source
	cfg.Preview.Layout = *layout
	cfg.Logging.Development = *dev
	if *dev && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		if err != nil {
			log.Printf("Server error: %v", err)
		}
	}

	if err := srv.Close(); err != nil {
		log.Printf("Error during close: %v", err)
	}
}
