package main

import (
	"context"
	"os"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"platefinder/browse"
	"platefinder/config"
	"platefinder/console"
	"platefinder/gateway"
	"platefinder/geo"
	"platefinder/logging"
	"platefinder/upload"
)

// main runs the interactive restaurant finder against the directory API.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.Logging.Level)

	api := gateway.New(cfg.API.BaseURL, nil)
	log.WithField("api", cfg.API.BaseURL).WithField("location", cfg.Location.Provider).Debug("client configured")

	c := console.New(os.Stdin, os.Stdout,
		browse.NewController(api, geo.New(cfg.Location)),
		upload.NewController(api, nil),
		api,
	)
	if err := c.Run(context.Background()); err != nil {
		log.WithError(err).Fatal("console failed")
	}
}
