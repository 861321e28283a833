package main

import (
	"context"
	"log"

	"github.com/Rana-Faraz/authbase/internal/config"
	"github.com/Rana-Faraz/authbase/internal/server"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
