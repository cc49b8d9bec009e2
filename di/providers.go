package di

import (
	"context"
	"io"
	"slotkeeper/config"
	"slotkeeper/infras/kafka"
	"slotkeeper/infras/otel"
	"slotkeeper/infras/postgres"
	"slotkeeper/internal/consumers/payment"
	"slotkeeper/internal/domains/event"
	sweeperService "slotkeeper/internal/domains/sweeper/service"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const otelShutdownTimeout = 5 * time.Second

// Worker bundles the background jobs run by cmd/worker.
type Worker struct {
	Sweeper  sweeperService.Sweeper
	Payments *payment.Consumer
	Closers  []io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// provideDispatcher registers the subscribers every process needs: a debug
// log and, when a topic is configured, the Kafka forwarder.
func provideDispatcher(ot otel.Otel, client kafka.Client, cfg *config.Config) event.Dispatcher {
	dispatcher := event.NewDispatcher(ot)
	dispatcher.Subscribe(event.LogSubscriber())

	if topic := cfg.Kafka.Topics.BookingEvents; topic != "" && len(cfg.Kafka.Brokers) > 0 {
		dispatcher.Subscribe(event.NewKafkaForwarder(client, topic))
	} else {
		log.Warn().Msg("No booking events topic configured, lifecycle events stay in process")
	}

	return dispatcher
}

// provideClosers lists resources in release order: producers first, then
// the stores, then the tracer so late spans still flush.
func provideClosers(client kafka.Client, db *postgres.Connection, redis *goRedis.Client, ot otel.Otel) []io.Closer {
	return []io.Closer{
		client,
		db,
		redis,
		closerFunc(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
			defer cancel()

			return ot.Shutdown(ctx)
		}),
	}
}
