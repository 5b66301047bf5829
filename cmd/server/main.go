package main

import (
	"context"
	"log"

	"github.com/dsavelev/sessiond/internal/server"
	"github.com/dsavelev/sessiond/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
