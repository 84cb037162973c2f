package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pulsecheck/engage/internal/api"
	"github.com/pulsecheck/engage/internal/biz"
	"github.com/pulsecheck/engage/internal/conf"
	"github.com/pulsecheck/engage/internal/data"
	"github.com/pulsecheck/engage/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(cfg.DBPath, cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.GenerationTimeout())
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Storage.Close()

	fmt.Printf("[Engine] Database: %s\n", cfg.DBPath)

	// Initialize usecase layer
	ucs := biz.NewUsecases(repos.Storage, cfg.ToDetectorConfig(), cfg.CycleHistory)

	// Initialize the scheduler
	scheduler := service.NewEngagementScheduler(
		repos.Storage, repos.Generator, ucs.Detector, ucs.Filter, ucs.Registry, ucs.CycleLog, cfg.ToSchedulerConfig())
	scheduler.Start()
	if cfg.Scheduler.TestingMode {
		fmt.Println("[Engine] Testing mode is ON: cooldowns and caps are lifted")
	}

	// Initialize the ops API server
	apiServer := api.NewServer(scheduler, ucs.CycleLog, cfg.APIPort)
	go func() {
		if err := apiServer.Start(); err != nil {
			fmt.Printf("[Engine] API server error: %v\n", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	scheduler.Stop()
	apiServer.Stop()
}
