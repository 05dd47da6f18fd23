package main

import (
	"log"

	"github.com/joho/godotenv"

	"sheetpress/internal/config"
	"sheetpress/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Web] No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	app, err := ui.NewApp(ui.Config{
		Port:        cfg.Server.Port,
		ZeroAsBlank: cfg.Process.ZeroAsBlank,
	})
	if err != nil {
		log.Fatal("Failed to create web app:", err)
	}

	log.Printf("Starting Sheetpress on http://localhost:%s", cfg.Server.Port)
	log.Fatal(app.Start())
}
