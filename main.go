package main

import (
	"os"

	"github.com/gnzdotmx/pequebum/cmd"
	"github.com/gnzdotmx/pequebum/internal/utils"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file found - using environment variables")
	} else {
		utils.LogDebug("Loaded environment variables from .env file")
	}
}

func main() {
	if err := cmd.Execute(); err != nil {
		utils.LogError("Error: %s", err)
		os.Exit(1)
	}
}
