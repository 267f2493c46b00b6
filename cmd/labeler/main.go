package main

import (
	"log"

	"github.com/andreyxaxa/Image-Tagger/config"
	"github.com/andreyxaxa/Image-Tagger/internal/app"
)

func main() {
	// Lambda supplies configuration through the function environment
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	app.RunLabeler(cfg)
}
