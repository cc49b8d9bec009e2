package main

import (
	"context"
	"os"
	"os/signal"
	"slotkeeper/config"
	"slotkeeper/di"
	"slotkeeper/shared/logger"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	argLength = 2

	commandSweep   = "sweep"
	commandRun     = "run"
	commandConsume = "consume"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.UseJSONOutput(cfg, os.Stdout)
	logger.SetLogLevel(cfg)

	if len(os.Args) < argLength {
		log.Fatal().Msg("Worker command is required: sweep, run or consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := di.InitializeWorker()

	err := execute(ctx, cfg, worker, os.Args[1])

	for _, closer := range worker.Closers {
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to release resource on shutdown")
		}
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("Worker failed")
	}
}

func execute(ctx context.Context, cfg *config.Config, worker *di.Worker, command string) error {
	switch command {
	case commandSweep:
		res, err := worker.Sweeper.Sweep(ctx)
		if err != nil {
			return err //nolint:wrapcheck
		}

		log.Info().
			Int("batches", res.Batches).
			Int("visited", res.Visited).
			Int("expired", res.Expired).
			Int("skipped", res.Skipped).
			Int("busy", res.Busy).
			Int("failed", res.Failed).
			Msg("Hold sweep finished")

		return nil
	case commandConsume:
		return worker.Payments.Run(ctx) //nolint:wrapcheck
	case commandRun:
		group, ctx := errgroup.WithContext(ctx)

		group.Go(func() error {
			return worker.Sweeper.Run(ctx) //nolint:wrapcheck
		})

		if cfg.Kafka.Topics.PaymentEvents != "" && len(cfg.Kafka.Brokers) > 0 {
			group.Go(func() error {
				return worker.Payments.Run(ctx) //nolint:wrapcheck
			})
		} else {
			log.Warn().Msg("No payment events topic configured, consumer disabled")
		}

		return group.Wait() //nolint:wrapcheck
	default:
		log.Fatal().Str("command", command).Msg("Invalid command. Use 'sweep', 'run' or 'consume'")

		return nil
	}
}
