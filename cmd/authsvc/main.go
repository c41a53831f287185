package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/you/authsvc/internal/app"
	"github.com/you/authsvc/internal/config"
)

func main() {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := app.Run(cfg); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
