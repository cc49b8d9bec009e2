package main

import (
	"os"
	"slotkeeper/config"
	"slotkeeper/helper"
	"slotkeeper/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down) is required")
	}

	cfg := config.Get()

	actions := map[string]func(*config.Config) error{
		"up":      helper.Up,
		"down":    helper.Down,
		"drop":    helper.Drop,
		"step-up": helper.StepUp,
		"version": helper.Version,
	}

	action, ok := actions[os.Args[1]]
	if !ok {
		log.Fatal().Msg("Invalid direction. Use 'up', 'down', 'drop', 'step-up' or 'version'")
	}

	if err := action(cfg); err != nil {
		log.Fatal().Err(err).Str("action", os.Args[1]).Msg("Migration failed")
	}
}
