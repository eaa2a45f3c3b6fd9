package main

import (
	"os"

	"github.com/catalogdesk/go-backend/internal/app"
	"github.com/catalogdesk/go-backend/internal/cfg"
	"github.com/catalogdesk/go-backend/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	config, err := cfg.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	if err := app.Run(config, log); err != nil {
		os.Exit(1)
	}
}
