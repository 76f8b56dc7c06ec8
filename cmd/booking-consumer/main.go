// Command booking-consumer drains the booking.confirmed queue into the
// booking log file.  It runs next to the web server and shares its
// environment variables.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinemaflow/internal/config"
	"github.com/iliyamo/cinemaflow/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := queue.NewConsumer(cfg.RabbitMQURL, cfg.BookingLog, log)
	log.WithFields(logrus.Fields{"queue": queue.BookingQueueName, "file": c.LogPath}).Info("booking consumer started")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("booking consumer stopped")
	}
	log.Info("booking consumer stopped")
}
