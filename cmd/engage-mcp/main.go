package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	enginemcp "github.com/pulsecheck/engage/internal/mcp"
)

func main() {
	godotenv.Load()

	apiURL := os.Getenv("ENGINE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8642"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	client := enginemcp.NewClient(apiURL)
	server := enginemcp.NewOpsServer(client)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "[EngageMCP] Server error: %v\n", err)
		os.Exit(1)
	}
}
