package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/previewbridge/internal/providers/chat"
)

func main() {
	prompt := flag.String("prompt", "Hello!", "User message")
	stream := flag.Bool("stream", false, "Stream the reply")
	mock := flag.Bool("mock", false, "Print a canned reply without calling the API")
	probe := flag.Bool("test", false, "Only check that the API is reachable")
	model := flag.String("model", "", "Override API_MODEL")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	logger := logging.FromLevel("warn", *dev)
	defer func() { _ = logger.Sync() }()

	if *mock {
		fmt.Println(chat.MockResponse(*prompt).Content())
		return
	}

	cfg, err := chat.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *model != "" {
		cfg.Model = *model
	}
	if !chat.IsValidAPIKey(cfg.APIKey) {
		logger.Warn("API_KEY does not look like an API key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := chat.NewClient(cfg, chat.WithLogger(logger.Component("chat")))

	if *probe {
		if !client.TestConnection(ctx) {
			fmt.Println("unreachable")
			os.Exit(1)
		}
		fmt.Println("ok")
		return
	}

	messages := []chat.Message{{
		ID:        uuid.NewString(),
		Role:      chat.RoleUser,
		Content:   *prompt,
		Timestamp: time.Now().UnixMilli(),
	}}

	if *stream {
		err := client.Stream(ctx, messages, chat.StreamHandlers{
			OnChunk:    func(text string) { fmt.Print(text) },
			OnComplete: func() { fmt.Println() },
		})
		if err != nil {
			logger.Error("Stream failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	resp, err := client.Send(ctx, messages)
	if err != nil {
		logger.Error("Request failed", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(resp.Content())
}
