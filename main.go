package main

import (
	"log"

	"github.com/joho/godotenv"

	"mediscope/cmd"
	"mediscope/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Logging config is read directly from the environment so CLI commands
	// work without the full service configuration.
	if err := logger.Setup(logger.ConfigFromEnv()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute()
}
