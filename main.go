package main

import (
	"flag"
	"log"

	"github.com/Lokii-git/vrpa-manager/config"
	"github.com/Lokii-git/vrpa-manager/server"
)

func main() {
	cfgPath := flag.String("config", "", "path to config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := &server.App{}
	app.Initialize(cfg)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
