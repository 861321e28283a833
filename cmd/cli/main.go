package main

import (
	"context"
	"log"
	"os"

	"github.com/Rana-Faraz/authbase/internal/buildinfo"
	"github.com/Rana-Faraz/authbase/internal/cli"
	"github.com/Rana-Faraz/authbase/internal/config"
	"github.com/Rana-Faraz/authbase/internal/flagx"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx, flagx.Positional(os.Args[1:], "-q")); err != nil {
		log.Fatalf("%v", err)
	}

}
