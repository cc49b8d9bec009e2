package main

import (
	"os"
	"slotkeeper/config"
	"slotkeeper/di"
	"slotkeeper/helper"
	"slotkeeper/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Slotkeeper API
// @version 1.0
// @description Booking slot reservation and lifecycle engine.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.UseJSONOutput(cfg, os.Stdout)

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
